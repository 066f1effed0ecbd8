package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"
)

// EnsureSchema creates the tables on startup if they do not exist yet.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS users (
  telegram_id    BIGINT PRIMARY KEY,
  first_name     TEXT,
  username       TEXT,
  premium_until  TIMESTAMPTZ,
  is_admin       BOOLEAN NOT NULL DEFAULT FALSE,
  registered_at  TIMESTAMPTZ NOT NULL,
  last_seen_at   TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS files (
  id             TEXT PRIMARY KEY,
  tg_file_id     TEXT NOT NULL,
  file_unique_id TEXT,
  file_kind      TEXT NOT NULL,
  file_name      TEXT,
  added_by       BIGINT NOT NULL,
  added_at       TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_files_unique ON files(file_unique_id);

CREATE TABLE IF NOT EXISTS batches (
  id         TEXT PRIMARY KEY,
  kind       TEXT NOT NULL,
  created_by BIGINT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS batch_items (
  batch_id   TEXT NOT NULL REFERENCES batches(id) ON DELETE CASCADE,
  ord        INT NOT NULL,
  item_kind  TEXT NOT NULL,
  file_id    TEXT REFERENCES files(id),
  channel_id BIGINT,
  message_id INT,
  PRIMARY KEY (batch_id, ord)
);

CREATE TABLE IF NOT EXISTS links (
  code         TEXT PRIMARY KEY,
  target_kind  TEXT NOT NULL,
  target_id    TEXT NOT NULL,
  tier         TEXT NOT NULL,
  created_by   BIGINT NOT NULL,
  created_at   TIMESTAMPTZ NOT NULL,
  last_used_at TIMESTAMPTZ,
  uses         INT NOT NULL DEFAULT 0,
  removed      BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS idx_links_target ON links(target_kind, target_id, tier);

CREATE TABLE IF NOT EXISTS tokens (
  token         TEXT PRIMARY KEY,
  created_by    BIGINT NOT NULL,
  created_at    TIMESTAMPTZ NOT NULL,
  used_by       BIGINT,
  used_at       TIMESTAMPTZ,
  grant_seconds BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS force_channels (
  channel_id  BIGINT PRIMARY KEY,
  invite_link TEXT,
  title       TEXT,
  username    TEXT,
  verifiable  BOOLEAN NOT NULL DEFAULT TRUE,
  added_by    BIGINT NOT NULL,
  added_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
  key   TEXT PRIMARY KEY,
  value TEXT
);
`

func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schemaDDL)
	return err
}
