package note

import (
	"errors"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/user"
)

var ErrNotFound = errors.New("note not found")

type Note struct {
	ID          string    `json:"id" bson:"_id"`
	Content     string    `json:"content" bson:"content"`
	TaskID      string    `json:"task" bson:"task"`
	UserID      string    `json:"-" bson:"user"`
	IsAdminNote bool      `json:"isAdminNote" bson:"isAdminNote"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Populated is a note with its author resolved.
type Populated struct {
	Note
	User user.Ref `json:"user"`
}

type CreateNoteRequest struct {
	Content string `json:"content" binding:"required,notblank,max=1000"`
}
