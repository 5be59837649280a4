package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	listdevicesmodels "github.com/StanfordSpezi/spezi-firebase-sub000/internal/models/list_devices"
	notificationsmodels "github.com/StanfordSpezi/spezi-firebase-sub000/internal/models/notifications"
	registerdevicemodels "github.com/StanfordSpezi/spezi-firebase-sub000/internal/models/register_device"
	unregisterdevicemodels "github.com/StanfordSpezi/spezi-firebase-sub000/internal/models/unregister_device"
	"github.com/StanfordSpezi/spezi-firebase-sub000/internal/registry"
)

type deviceRegistry interface {
	StoreDevice(ctx context.Context, userID string, device notificationsmodels.Device) error
	RemoveDevice(ctx context.Context, userID, token string, platform notificationsmodels.Platform) error
	GetUserDevices(ctx context.Context, userID string) ([]notificationsmodels.DeviceRecord, error)
}

type DevicesHandler struct {
	registry deviceRegistry
	logger   *zap.SugaredLogger
}

// NewDevicesHandler creates a new devices handler
func NewDevicesHandler(registry deviceRegistry, logger *zap.SugaredLogger) *DevicesHandler {
	return &DevicesHandler{registry: registry, logger: logger}
}

// RegisterDevice stores the caller's device, taking the token over from any
// other account it was registered to.
func (h *DevicesHandler) RegisterDevice(c *gin.Context) {
	var req registerdevicemodels.RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	uid, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.registry.StoreDevice(c.Request.Context(), uid, req.Device); err != nil {
		if errors.Is(err, registry.ErrInvalidDevice) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid device"})
			return
		}
		h.logError(c, err, "failed to register device", "platform", req.Platform)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register device"})
		return
	}

	logWithContext(h.logger, c, "info", "device registered", "platform", req.Platform)
	c.JSON(http.StatusOK, registerdevicemodels.RegisterDeviceResponse{Message: "Device registered successfully"})
}

// UnregisterDevice removes the token for the given platform. Unknown tokens
// are not an error.
func (h *DevicesHandler) UnregisterDevice(c *gin.Context) {
	var req unregisterdevicemodels.UnregisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	uid, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.registry.RemoveDevice(c.Request.Context(), uid, req.NotificationToken, req.Platform); err != nil {
		if errors.Is(err, registry.ErrInvalidDevice) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid device"})
			return
		}
		h.logError(c, err, "failed to unregister device", "platform", req.Platform)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unregister device"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Device unregistered successfully"})
}

// ListDevices returns the caller's registered devices
func (h *DevicesHandler) ListDevices(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}

	records, err := h.registry.GetUserDevices(c.Request.Context(), uid)
	if err != nil {
		if errors.Is(err, registry.ErrInvalidDevice) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
			return
		}
		h.logError(c, err, "failed to list devices")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list devices"})
		return
	}

	resp := listdevicesmodels.ListDevicesResponse{Devices: make([]listdevicesmodels.DeviceResponse, 0, len(records))}
	for _, rec := range records {
		resp.Devices = append(resp.Devices, listdevicesmodels.DeviceResponse{
			ID:         rec.ID,
			LastUpdate: rec.LastUpdate,
			Device:     rec.Content,
		})
	}
	c.JSON(http.StatusOK, resp)
}
