package sample

import (
	"context"
	"fmt"

	"github.com/okian/pele/internal/domain/model"
)

// Source serves generated records to the scoring service.
type Source struct {
	Config Config
}

// Load generates the configured cohort.
func (s Source) Load(ctx context.Context) ([]model.MatchRecord, error) {
	return Generate(ctx, s.Config)
}

// Name describes the source for logs.
func (s Source) Name() string {
	return fmt.Sprintf("sample:seed=%d", s.Config.Seed)
}
