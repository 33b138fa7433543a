package services

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"pubhub/providers"
	"pubhub/testutil"
)

func sequentialNames() providers.NameGenerator {
	var n atomic.Int64
	return providers.NameGeneratorFunc(func() string {
		return fmt.Sprintf("Generated Author %d", n.Add(1))
	})
}

func newTestService(t *testing.T) (*IngestService, *gorm.DB) {
	t.Helper()
	db := testutil.DB(t)
	return NewIngestService(db, sequentialNames(), zap.NewNop(), NewMetrics(prometheus.NewRegistry())), db
}

func intPtr(v int) *int { return &v }
