// internal/domain/watchlist.go
package domain

import "time"

// WatchlistEntry links one viewer to one title. The (ViewerID, TitleID) pair is unique.
type WatchlistEntry struct {
	ID        int64     `json:"id" db:"id" validate:"required,gt=0"`
	ViewerID  int64     `json:"viewerId" db:"viewer_id" validate:"required,gt=0"`
	TitleID   int64     `json:"titleId" db:"title_id" validate:"required,gt=0"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// AddToWatchlistRequest is the body of the add operation.
// TitleID is a pointer so a missing field fails "required" instead of decoding to zero.
type AddToWatchlistRequest struct {
	TitleID *int64 `json:"titleId" validate:"required,gt=0"`
}

// AuthResult is the outcome of authenticating one request. The zero value is anonymous.
type AuthResult struct {
	ViewerID      int64
	Authenticated bool
}

// Anonymous is the result for a caller without valid credentials.
func Anonymous() AuthResult {
	return AuthResult{}
}

// Authenticated is the result for a resolved viewer.
func Authenticated(viewerID int64) AuthResult {
	return AuthResult{ViewerID: viewerID, Authenticated: true}
}

// Viewer returns the viewer id and whether the caller is signed in.
func (a AuthResult) Viewer() (int64, bool) {
	return a.ViewerID, a.Authenticated && a.ViewerID > 0
}
