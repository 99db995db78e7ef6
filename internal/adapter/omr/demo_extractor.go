// Package omr holds the SheetExtractor implementations that read answers off
// uploaded OMR sheets.
package omr

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"math/rand/v2"

	"omr-eval/internal/domain"
)

var demoOptions = []string{"a", "b", "c", "d", ""}

// DemoExtractor stands in for a real OMR engine. It picks an option (or a
// blank) for every question, seeded from the sheet bytes so the same sheet
// always yields the same answers.
type DemoExtractor struct{}

func NewDemoExtractor() *DemoExtractor {
	return &DemoExtractor{}
}

func (e *DemoExtractor) Extract(ctx context.Context, sheet []byte) (map[int]string, error) {
	if len(sheet) == 0 {
		return nil, errors.New("empty sheet")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sum := sha256.Sum256(sheet)
	rng := rand.New(rand.NewPCG(binary.BigEndian.Uint64(sum[:8]), binary.BigEndian.Uint64(sum[8:16])))

	answers := make(map[int]string, domain.TotalQuestions)
	for q := 1; q <= domain.TotalQuestions; q++ {
		if opt := demoOptions[rng.IntN(len(demoOptions))]; opt != "" {
			answers[q] = opt
		}
	}
	return answers, nil
}
