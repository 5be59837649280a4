package registry

import "strings"

const (
	DefaultCollectionName = "devices"
	DefaultPathTemplate   = PathTemplate("users/{userId}/devices")

	userIDPlaceholder = "{userId}"
)

// PathTemplate addresses a user's device collection, e.g.
// "users/{userId}/devices".
type PathTemplate string

// Collection returns the collection path for userID.
func (t PathTemplate) Collection(userID string) string {
	return strings.ReplaceAll(string(t), userIDPlaceholder, userID)
}

// Document returns the path of document docID in userID's collection.
func (t PathTemplate) Document(userID, docID string) string {
	return t.Collection(userID) + "/" + docID
}

// Owner parses a document path produced by Document and returns the owning
// user and the document id.
func (t PathTemplate) Owner(path string) (userID, docID string, ok bool) {
	prefix, suffix, found := strings.Cut(string(t), userIDPlaceholder)
	if !found {
		return "", "", false
	}
	rest, found := strings.CutPrefix(path, prefix)
	if !found {
		return "", "", false
	}
	sep := suffix + "/"
	i := strings.Index(rest, sep)
	if i <= 0 {
		return "", "", false
	}
	userID, docID = rest[:i], rest[i+len(sep):]
	if strings.Contains(userID, "/") || docID == "" || strings.Contains(docID, "/") {
		return "", "", false
	}
	return userID, docID, true
}

// Owns reports whether path is a document in userID's collection.
func (t PathTemplate) Owns(userID, path string) bool {
	owner, _, ok := t.Owner(path)
	return ok && owner == userID
}
