package worker

import (
	"context"
	"math/rand"
	"os"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingCatalog struct{ *MemoryCatalog }

var errCatalog = errors.New("catalog down")

func (failingCatalog) ProductNames(context.Context, int) ([]string, error) { return nil, errCatalog }

func smallCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		Products: []Product{
			{ID: 1, Name: "kopi", Price: 1},
			{ID: 2, Name: "teh", Price: 2},
			{ID: 3, Name: "susu", Price: 0.5},
		},
		Users: []int64{10, 20, 30, 40},
	}
}

func steppingClock(step time.Duration) func() time.Time {
	t := time.Unix(100, 0)
	return func() time.Time {
		now := t
		t = t.Add(step)
		return now
	}
}

func TestExecuteLight(t *testing.T) {
	e := NewExecutor(smallCatalog())
	e.now = steppingClock(25 * time.Millisecond)

	for _, label := range []string{"light", "ringan", ""} {
		res, err := e.Execute(context.Background(), label)
		require.NoError(t, err, label)
		assert.Equal(t, 3, res.ProductCount)
		assert.Equal(t, lightRounds*32, res.FinalHash)
		assert.Equal(t, int64(25), res.ExecutionTime)
		assert.Equal(t, res.FinishTime-res.StartTime, res.ExecutionTime)
	}
	assert.Equal(t, Stats{Executed: 3}, e.Stats())
}

func TestExecuteHeavy(t *testing.T) {
	e := NewExecutor(smallCatalog())
	res, err := e.Execute(context.Background(), "berat")
	require.NoError(t, err)
	assert.Equal(t, 3, res.PriceCount)
	assert.InDelta(t, 3.5/3, res.AveragePrice, 1e-12)
	assert.Greater(t, res.Total, int64(0))
}

func TestHeavyTotal(t *testing.T) {
	e := NewExecutor(&MemoryCatalog{Products: []Product{{ID: 1, Price: 1}, {ID: 2, Price: 2}}})
	res, err := e.heavy(context.Background())
	require.NoError(t, err)
	// 3*i < 99997 for every round, so the total is 3 * sum(i)
	assert.Equal(t, int64(3*(heavyRounds-1)*heavyRounds/2), res.Total)
	assert.Equal(t, 1.5, res.AveragePrice)
}

func TestExecuteMedium(t *testing.T) {
	e := NewExecutor(smallCatalog())
	res, err := e.Execute(context.Background(), "MEDIUM")
	require.NoError(t, err)
	assert.Equal(t, 12, res.ProcessedCombinations)
	assert.Len(t, res.SampleHash, sampleHashes)
	assert.Len(t, res.SampleHash[0], 64)
}

func TestExecuteMediumCapsHashes(t *testing.T) {
	e := NewExecutor(RandomCatalog(400, 400, rand.New(rand.NewSource(1))))
	res, err := e.Execute(context.Background(), "sedang")
	require.NoError(t, err)
	assert.Equal(t, mediumMaxHashes, res.ProcessedCombinations)
}

func TestExecuteUnknown(t *testing.T) {
	e := NewExecutor(smallCatalog())
	_, err := e.Execute(context.Background(), "extreme")
	assert.Equal(t, ErrUnknownTask, err)
	assert.Equal(t, Stats{}, e.Stats())
}

func TestExecuteCatalogFailure(t *testing.T) {
	e := NewExecutor(failingCatalog{smallCatalog()})
	_, err := e.Execute(context.Background(), "light")
	assert.Equal(t, errCatalog, err)
	assert.Equal(t, Stats{Failed: 1}, e.Stats())
}

func TestMemoryCatalogLimits(t *testing.T) {
	c := RandomCatalog(20, 5, rand.New(rand.NewSource(2)))
	ctx := context.Background()

	names, err := c.ProductNames(ctx, 8)
	require.NoError(t, err)
	assert.Len(t, names, 8)

	prices, err := c.TopPrices(ctx, 100)
	require.NoError(t, err)
	require.Len(t, prices, 20)
	for i := 1; i < len(prices); i++ {
		assert.GreaterOrEqual(t, prices[i-1], prices[i])
	}

	users, err := c.UserIDs(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, users)
}

func TestDBConfigString(t *testing.T) {
	d := DBConfig{User: "u", Password: "p", Host: "db", Port: 3306, Database: "cloud_tasks"}
	assert.Equal(t, "u:p@(db:3306)/cloud_tasks?parseTime=true", d.String())
}

// Needs a MySQL catalog: CATALOG_MYSQL_HOST=127.0.0.1 go test ./internal/worker
func TestSQLCatalog(t *testing.T) {
	host := os.Getenv("CATALOG_MYSQL_HOST")
	if host == "" {
		t.Skip("CATALOG_MYSQL_HOST not set")
	}
	cfg := DBConfig{User: "root", Host: host, Port: 3306, Database: "cloud_tasks"}
	db, err := cfg.Connect(context.Background())
	require.NoError(t, err)
	defer db.Close()

	e := NewExecutor(NewSQLCatalog(db))
	for _, w := range []string{"light", "medium", "heavy"} {
		_, err := e.Execute(context.Background(), w)
		assert.NoError(t, err, w)
	}
}
