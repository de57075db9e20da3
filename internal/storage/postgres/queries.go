package postgres

// Statements run against the tests relation. Every value is bound through a
// positional parameter; nothing is interpolated.
const (
	createTestsTable = `
CREATE TABLE IF NOT EXISTS tests (
	id       SERIAL PRIMARY KEY,
	hostname TEXT NOT NULL,
	test     TEXT NOT NULL,
	threads  INT  NOT NULL,
	run      INT  NOT NULL,
	result   DOUBLE PRECISION NOT NULL
)`

	selectHosts = `SELECT DISTINCT hostname FROM tests ORDER BY hostname`

	selectAggregatedTests = `
SELECT hostname, test, threads, avg(result) AS average_result
FROM tests
GROUP BY hostname, test, threads
ORDER BY test, hostname, threads`

	selectHostAggregatedTests = `
SELECT test, threads, avg(result) AS average_result
FROM tests
WHERE hostname = $1
GROUP BY test, threads
ORDER BY test, threads`

	deleteTest = `DELETE FROM tests WHERE id = $1`

	insertTest = `
INSERT INTO tests (hostname, test, threads, run, result)
VALUES ($1, $2, $3, $4, $5)`
)
