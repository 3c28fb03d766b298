package etl

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Config holds the configuration for the loader.
type Config struct {
	Logger *slog.Logger
	DB     *sql.DB

	// IntlDateFormat selects the date interpretation for international
	// sales files (default DateFormatMMDDYY, matching the observed data).
	IntlDateFormat string
}

func (cfg *Config) Validate() error {
	if cfg.Logger == nil {
		return fmt.Errorf("logger is required")
	}
	if cfg.DB == nil {
		return fmt.Errorf("database is required")
	}
	return nil
}

// Loader ingests CSV files into the database.
type Loader struct {
	log        *slog.Logger
	cfg        Config
	intlLayout string
}

// New creates a new Loader.
func New(cfg Config) (*Loader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate loader config: %w", err)
	}
	if cfg.IntlDateFormat == "" {
		cfg.IntlDateFormat = DateFormatMMDDYY
	}
	layout, err := dateLayout(cfg.IntlDateFormat)
	if err != nil {
		return nil, err
	}
	return &Loader{
		log:        cfg.Logger,
		cfg:        cfg,
		intlLayout: layout,
	}, nil
}

// Load reads every file, detects its format, and registers the normalized
// tables. Sales rows from multiple files merge into one sales_data table.
// A missing or unrecognized file is skipped with a warning, not an error;
// a file that exists but cannot be parsed fails the load.
func (l *Loader) Load(ctx context.Context, paths ...string) error {
	var sales []salesRow
	var stock []stockRow
	var pricing []pricingRow

	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			l.log.Warn("etl: file not found, skipping", "path", path)
			continue
		}

		format, rows, err := l.loadFile(path)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}

		switch format {
		case FormatAmazon, FormatInternational:
			sales = append(sales, rows.sales...)
		case FormatStock:
			stock = append(stock, rows.stock...)
		case FormatPricing:
			pricing = append(pricing, rows.pricing...)
		default:
			l.log.Warn("etl: unknown format, skipping", "file", filepath.Base(path))
			continue
		}
		l.log.Info("etl: loaded file", "file", filepath.Base(path), "format", format)
	}

	if len(sales) > 0 {
		if err := l.registerSales(ctx, sales); err != nil {
			return fmt.Errorf("failed to register sales_data: %w", err)
		}
		l.log.Info("etl: registered table", "table", "sales_data", "rows", len(sales))
	}
	if len(stock) > 0 {
		if err := l.registerStock(ctx, stock); err != nil {
			return fmt.Errorf("failed to register stock_data: %w", err)
		}
		l.log.Info("etl: registered table", "table", "stock_data", "rows", len(stock))
	}
	if len(pricing) > 0 {
		if err := l.registerPricing(ctx, pricing); err != nil {
			return fmt.Errorf("failed to register pricing_data: %w", err)
		}
		l.log.Info("etl: registered table", "table", "pricing_data", "rows", len(pricing))
	}

	return nil
}

type fileRows struct {
	sales   []salesRow
	stock   []stockRow
	pricing []pricingRow
}

func (l *Loader) loadFile(path string) (Format, fileRows, error) {
	f, err := os.Open(path)
	if err != nil {
		return FormatUnknown, fileRows{}, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return FormatUnknown, fileRows{}, fmt.Errorf("failed to read header: %w", err)
	}

	format := DetectFormat(header)
	if format == FormatUnknown {
		return FormatUnknown, fileRows{}, nil
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		// First occurrence wins for duplicated columns.
		if _, ok := cols[name]; !ok {
			cols[name] = i
		}
	}

	var rows fileRows
	rowIndex := 0
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return format, fileRows{}, fmt.Errorf("failed to read row: %w", err)
		}
		r := record{cols: cols, fields: fields}

		switch format {
		case FormatAmazon:
			rows.sales = append(rows.sales, transformAmazon(r))
		case FormatInternational:
			rows.sales = append(rows.sales, transformInternational(r, l.intlLayout, rowIndex))
		case FormatStock:
			rows.stock = append(rows.stock, transformStock(r))
		case FormatPricing:
			rows.pricing = append(rows.pricing, transformPricing(r))
		}
		rowIndex++
	}

	return format, rows, nil
}

func (l *Loader) registerSales(ctx context.Context, rows []salesRow) error {
	const create = `CREATE OR REPLACE TABLE sales_data (
		Date DATE,
		Year INTEGER,
		Month INTEGER,
		Quarter INTEGER,
		Month_Name VARCHAR,
		Order_ID VARCHAR,
		SKU VARCHAR,
		Qty BIGINT,
		Amount DOUBLE,
		City VARCHAR,
		State VARCHAR,
		Country VARCHAR,
		Category VARCHAR,
		Size VARCHAR,
		Status VARCHAR,
		Source VARCHAR
	)`
	const insert = `INSERT INTO sales_data VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	return l.withTx(ctx, create, func(stmt *sql.Stmt) error {
		for _, row := range rows {
			var date any
			var year, month, quarter, monthName any
			if row.Date != nil {
				d := *row.Date
				date = d
				year = d.Year()
				month = int(d.Month())
				quarter = (int(d.Month())-1)/3 + 1
				monthName = d.Month().String()
			}
			if _, err := stmt.ExecContext(ctx,
				date, year, month, quarter, monthName,
				row.OrderID, row.SKU, row.Qty, row.Amount,
				ptrArg(row.City), ptrArg(row.State), ptrArg(row.Country),
				ptrArg(row.Category), ptrArg(row.Size), ptrArg(row.Status),
				row.Source,
			); err != nil {
				return err
			}
		}
		return nil
	}, insert)
}

func (l *Loader) registerStock(ctx context.Context, rows []stockRow) error {
	const create = `CREATE OR REPLACE TABLE stock_data (
		SKU VARCHAR,
		Style_ID VARCHAR,
		Category VARCHAR,
		Size VARCHAR,
		Color VARCHAR,
		Stock BIGINT
	)`
	const insert = `INSERT INTO stock_data VALUES (?, ?, ?, ?, ?, ?)`

	return l.withTx(ctx, create, func(stmt *sql.Stmt) error {
		for _, row := range rows {
			if _, err := stmt.ExecContext(ctx,
				row.SKU, row.StyleID,
				ptrArg(row.Category), ptrArg(row.Size), ptrArg(row.Color),
				row.Stock,
			); err != nil {
				return err
			}
		}
		return nil
	}, insert)
}

func (l *Loader) registerPricing(ctx context.Context, rows []pricingRow) error {
	const create = `CREATE OR REPLACE TABLE pricing_data (
		SKU VARCHAR,
		Style_ID VARCHAR,
		Category VARCHAR,
		TP DOUBLE,
		Amazon_MRP DOUBLE,
		Flipkart_MRP DOUBLE,
		Ajio_MRP DOUBLE
	)`
	const insert = `INSERT INTO pricing_data VALUES (?, ?, ?, ?, ?, ?, ?)`

	return l.withTx(ctx, create, func(stmt *sql.Stmt) error {
		for _, row := range rows {
			if _, err := stmt.ExecContext(ctx,
				row.SKU, row.StyleID, ptrArg(row.Category),
				floatArg(row.TP), floatArg(row.AmazonMRP),
				floatArg(row.FlipkartMRP), floatArg(row.AjioMRP),
			); err != nil {
				return err
			}
		}
		return nil
	}, insert)
}

// withTx creates the table and bulk-inserts rows inside one transaction.
func (l *Loader) withTx(ctx context.Context, create string, insertRows func(*sql.Stmt) error, insert string) error {
	if _, err := l.cfg.DB.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	tx, err := l.cfg.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	if err := insertRows(stmt); err != nil {
		return fmt.Errorf("failed to insert rows: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func ptrArg(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func floatArg(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}
