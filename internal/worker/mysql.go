package worker

import (
	"context"
	"fmt"

	_ "github.com/go-sql-driver/mysql" // Pull in MySQL driver for sqlx
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	selectProductNamesStmt = `SELECT name FROM products LIMIT ?`
	selectTopPricesStmt    = `SELECT price FROM products ORDER BY price DESC LIMIT ?`
	selectProductIDsStmt   = `SELECT id FROM products LIMIT ?`
	selectUserIDsStmt      = `SELECT id FROM users LIMIT ?`
)

// DBConfig holds the MySQL connection settings of the catalog.
type DBConfig struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
}

// String returns the connection string for the DB
func (d DBConfig) String() string {
	return fmt.Sprintf(
		"%s:%s@(%s:%d)/%s?parseTime=true",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

// Connect opens the database and checks it is reachable.
func (d DBConfig) Connect(ctx context.Context) (*sqlx.DB, error) {
	log.WithFields(log.Fields{
		"host":     d.Host,
		"port":     d.Port,
		"database": d.Database,
	}).Info("connecting to catalog database")
	db, err := sqlx.Open("mysql", d.String())
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "ping %s:%d", d.Host, d.Port)
	}
	return db, nil
}

// SQLCatalog reads the catalog from the products and users tables.
type SQLCatalog struct {
	DB *sqlx.DB
}

func NewSQLCatalog(db *sqlx.DB) *SQLCatalog {
	return &SQLCatalog{DB: db}
}

func (c *SQLCatalog) ProductNames(ctx context.Context, limit int) ([]string, error) {
	var names []string
	if err := c.DB.SelectContext(ctx, &names, selectProductNamesStmt, limit); err != nil {
		return nil, errors.Wrap(err, "select product names")
	}
	return names, nil
}

func (c *SQLCatalog) TopPrices(ctx context.Context, limit int) ([]float64, error) {
	var prices []float64
	if err := c.DB.SelectContext(ctx, &prices, selectTopPricesStmt, limit); err != nil {
		return nil, errors.Wrap(err, "select prices")
	}
	return prices, nil
}

func (c *SQLCatalog) ProductIDs(ctx context.Context, limit int) ([]int64, error) {
	var ids []int64
	if err := c.DB.SelectContext(ctx, &ids, selectProductIDsStmt, limit); err != nil {
		return nil, errors.Wrap(err, "select product ids")
	}
	return ids, nil
}

func (c *SQLCatalog) UserIDs(ctx context.Context, limit int) ([]int64, error) {
	var ids []int64
	if err := c.DB.SelectContext(ctx, &ids, selectUserIDsStmt, limit); err != nil {
		return nil, errors.Wrap(err, "select user ids")
	}
	return ids, nil
}
