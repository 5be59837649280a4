package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	models "github.com/StanfordSpezi/spezi-firebase-sub000/internal/models/notifications"
)

const deviceColumns = `id::text, user_id, notification_token, platform,
	COALESCE(language, ''), COALESCE(time_zone, ''), COALESCE(os_version, ''),
	COALESCE(app_version, ''), COALESCE(app_build, ''), last_update`

// PostgresStore keeps devices in the user_devices table. Record paths are
// derived from user_id and id with the configured PathTemplate so that the
// registry sees the same layout as with Firestore.
type PostgresStore struct {
	pool  *pgxpool.Pool
	paths PathTemplate
}

func NewPostgresStore(pool *pgxpool.Pool, paths PathTemplate) *PostgresStore {
	return &PostgresStore{pool: pool, paths: paths}
}

const (
	maxTxAttempts = 5
	txRetryDelay  = 20 * time.Millisecond
)

// RunTransaction runs fn in a serializable transaction. Serialization
// failures and deadlocks roll back and rerun fn, up to maxTxAttempts times.
func (s *PostgresStore) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error {
	return retryTx(ctx, maxTxAttempts, txRetryDelay, func() error {
		return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{IsoLevel: pgx.Serializable}, func(tx pgx.Tx) error {
			return fn(ctx, &postgresTx{ctx: ctx, store: s, tx: tx})
		})
	})
}

func retryTx(ctx context.Context, attempts int, delay time.Duration, run func() error) error {
	for attempt := 1; ; attempt++ {
		err := run()
		if err == nil || attempt >= attempts || !isRetryableTxError(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return err
		case <-time.After(time.Duration(attempt) * delay):
		}
	}
}

// isRetryableTxError matches serialization_failure and deadlock_detected.
func isRetryableTxError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}

func (s *PostgresStore) UserDevices(ctx context.Context, userID string) ([]models.DeviceRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+deviceColumns+` FROM user_devices WHERE user_id = $1 ORDER BY last_update`, userID)
	if err != nil {
		return nil, err
	}
	return s.collect(rows)
}

func (s *PostgresStore) AllDevices(ctx context.Context) ([]models.DeviceRecord, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+deviceColumns+` FROM user_devices ORDER BY user_id, last_update`)
	if err != nil {
		return nil, err
	}
	return s.collect(rows)
}

func (s *PostgresStore) collect(rows pgx.Rows) ([]models.DeviceRecord, error) {
	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.DeviceRecord, error) {
		var (
			rec      models.DeviceRecord
			userID   string
			platform string
		)
		err := row.Scan(&rec.ID, &userID, &rec.Content.NotificationToken, &platform,
			&rec.Content.Language, &rec.Content.TimeZone, &rec.Content.OSVersion,
			&rec.Content.AppVersion, &rec.Content.AppBuild, &rec.LastUpdate)
		if err != nil {
			return rec, fmt.Errorf("scan device: %w", err)
		}
		rec.Content.Platform = models.ParsePlatform(platform)
		rec.Path = s.paths.Document(userID, rec.ID)
		return rec, nil
	})
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []models.DeviceRecord{}
	}
	return records, nil
}

type postgresTx struct {
	ctx   context.Context
	store *PostgresStore
	tx    pgx.Tx
}

func (t *postgresTx) DevicesByToken(token string) ([]models.DeviceRecord, error) {
	rows, err := t.tx.Query(t.ctx,
		`SELECT `+deviceColumns+` FROM user_devices WHERE notification_token = $1 ORDER BY last_update FOR UPDATE`, token)
	if err != nil {
		return nil, err
	}
	return t.store.collect(rows)
}

func (t *postgresTx) Set(path string, device models.Device) error {
	userID, id, ok := t.store.paths.Owner(path)
	if !ok {
		return fmt.Errorf("invalid device path %q", path)
	}
	return t.upsert(userID, id, device.Normalized())
}

func (t *postgresTx) Create(userID string, device models.Device) error {
	return t.upsert(userID, uuid.New().String(), device.Normalized())
}

func (t *postgresTx) upsert(userID, id string, d models.Device) error {
	_, err := t.tx.Exec(t.ctx, `
		INSERT INTO user_devices (id, user_id, notification_token, platform, language, time_zone,
			os_version, app_version, app_build, last_update)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''), NOW())
		ON CONFLICT (id) DO UPDATE SET
			notification_token = EXCLUDED.notification_token,
			platform = EXCLUDED.platform,
			language = EXCLUDED.language,
			time_zone = EXCLUDED.time_zone,
			os_version = EXCLUDED.os_version,
			app_version = EXCLUDED.app_version,
			app_build = EXCLUDED.app_build,
			last_update = NOW()`,
		id, userID, d.NotificationToken, string(d.Platform), d.Language, d.TimeZone,
		d.OSVersion, d.AppVersion, d.AppBuild,
	)
	return err
}

func (t *postgresTx) Delete(path string) error {
	userID, id, ok := t.store.paths.Owner(path)
	if !ok {
		return fmt.Errorf("invalid device path %q", path)
	}
	_, err := t.tx.Exec(t.ctx, `DELETE FROM user_devices WHERE id = $1 AND user_id = $2`, id, userID)
	return err
}
