package payment

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type ReferenceKind int

const (
	KindOrder ReferenceKind = iota + 1
	KindCustomOrder
)

const customOrderPrefix = "custom-order-"

var ErrInvalidReference = errors.New("invalid order reference")

func CustomOrderReference(id int64, at time.Time) string {
	return fmt.Sprintf("%s%d-%d", customOrderPrefix, id, at.UnixMilli())
}

func OrderReference(id int64, at time.Time) string {
	return fmt.Sprintf("ORDER-%d-%d", id, at.UnixMilli())
}

// ParseReference recovers the internal id from a gateway order reference of
// the form <prefix>-<id>-<suffix>. Custom order references carry a two-part
// prefix, so their id is the third segment.
func ParseReference(ref string) (ReferenceKind, int64, error) {
	kind, index := KindOrder, 1
	if strings.HasPrefix(ref, customOrderPrefix) {
		kind, index = KindCustomOrder, 2
	}

	parts := strings.Split(ref, "-")
	if len(parts) <= index {
		return 0, 0, ErrInvalidReference
	}
	id, err := strconv.ParseInt(parts[index], 10, 64)
	if err != nil || id <= 0 {
		return 0, 0, ErrInvalidReference
	}
	return kind, id, nil
}
