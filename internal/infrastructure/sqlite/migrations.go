package sqlite

// migration es un paso de esquema idempotente.
type migration struct {
	name string
	sql  string
}

// migrations se aplican en orden; cada una queda registrada en schema_migrations.
var migrations = []migration{
	{
		name: "create_stock_movements",
		sql: `
CREATE TABLE IF NOT EXISTS stock_movements (
    id             TEXT PRIMARY KEY,
    company_id     TEXT NOT NULL,
    site_id        TEXT NOT NULL,
    book_id        TEXT NOT NULL,
    movement_type  TEXT NOT NULL,
    quantity       INTEGER NOT NULL,
    reference_type TEXT NOT NULL DEFAULT '',
    reference_id   TEXT NOT NULL DEFAULT '',
    from_site_id   TEXT NOT NULL DEFAULT '',
    to_site_id     TEXT NOT NULL DEFAULT '',
    unit_cost      TEXT,
    total_cost     TEXT,
    occurred_at    INTEGER NOT NULL,
    created_by     TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_stock_movements_company_time ON stock_movements (company_id, occurred_at, id);
CREATE INDEX IF NOT EXISTS idx_stock_movements_site_book ON stock_movements (company_id, site_id, book_id);
`,
	},
	{
		name: "create_catalog",
		sql: `
CREATE TABLE IF NOT EXISTS books (
    id         TEXT PRIMARY KEY,
    company_id TEXT NOT NULL,
    isbn       TEXT NOT NULL DEFAULT '',
    title      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sites (
    id         TEXT PRIMARY KEY,
    company_id TEXT NOT NULL,
    name       TEXT NOT NULL,
    address    TEXT NOT NULL DEFAULT ''
);
`,
	},
	{
		name: "unique_transfer_receipt",
		sql: `
CREATE UNIQUE INDEX IF NOT EXISTS uq_stock_movements_transfer_receipt
    ON stock_movements (company_id, reference_id)
    WHERE movement_type = 'TRANSFER_IN' AND reference_type = 'Transfer';
`,
	},
}
