package utils

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

type IUtils interface {
	NewULIDFromTimestamp(t time.Time) (string, error)
	NewExportKey(calibrationID string, t time.Time) string
}

type utils struct{}

func New() IUtils {
	return &utils{}
}

func (u *utils) NewULIDFromTimestamp(t time.Time) (string, error) {
	ms := ulid.Timestamp(t)
	entropy := ulid.Monotonic(rand.Reader, 0)

	id, err := ulid.New(ms, entropy)
	if err != nil {
		return "", err
	}

	return id.String(), nil
}

// NewExportKey builds the object key for a calibration snapshot.
func (u *utils) NewExportKey(calibrationID string, t time.Time) string {
	stamp := strings.ReplaceAll(t.UTC().Format("20060102T150405.000"), ".", "")
	return fmt.Sprintf("%s/%s.json", calibrationID, stamp)
}
