package director

import (
	"errors"
	"fmt"

	"taleweaver/internal/game"
)

var (
	ErrWrongStage       = errors.New("action not valid in the current stage")
	ErrChoiceOutOfRange = errors.New("choice index out of range")
	ErrEmptyAction      = errors.New("action must not be empty")
	ErrEmptyGenre       = errors.New("genre must not be empty")
)

type NoticeKind string

const (
	NoticePersistence NoticeKind = "persistence"
	NoticeUnexpected  NoticeKind = "unexpected"
)

// Notice is a non-fatal failure. The story is intact and the user may
// simply retry; Message is safe to show as-is.
type Notice struct {
	Kind    NoticeKind
	Message string
	Err     error
}

func (n *Notice) Error() string {
	if n.Err == nil {
		return n.Message
	}
	return fmt.Sprintf("%s: %v", n.Message, n.Err)
}

func (n *Notice) Unwrap() error {
	return n.Err
}

// AsNotice reports whether err carries a Notice.
func AsNotice(err error) (*Notice, bool) {
	var n *Notice
	if errors.As(err, &n) {
		return n, true
	}
	return nil, false
}

func wrongStage(op string, stage game.Stage) error {
	return fmt.Errorf("%s in %s stage: %w", op, stage, ErrWrongStage)
}
