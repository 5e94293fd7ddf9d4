package mysql

const latestSnapshotSQL = `
SELECT basic_u, product_u
FROM price_history
WHERE article = ?
ORDER BY ts DESC, id DESC
LIMIT 1
`

const insertSnapshotSQL = `
INSERT INTO price_history (article, basic_u, product_u)
VALUES (?, ?, ?)
`

const historySQL = `
SELECT ts, basic_u, product_u
FROM price_history
WHERE article = ?
ORDER BY ts DESC, id DESC
LIMIT ?
`

const insertMissSQL = `
INSERT INTO fetch_misses (article, http_status, reason)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE
  http_status = VALUES(http_status),
  reason      = VALUES(reason),
  seen_at     = CURRENT_TIMESTAMP
`
