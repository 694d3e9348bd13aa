package results

const schema = `
CREATE TABLE IF NOT EXISTS results (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    batch_id TEXT NOT NULL DEFAULT '',
    provider TEXT NOT NULL,
    file_name TEXT NOT NULL DEFAULT '',
    url TEXT NOT NULL DEFAULT '',
    size INTEGER NOT NULL DEFAULT 0,
    result TEXT NOT NULL,
    added_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_results_provider ON results (provider, seq);
`
