// Package postgres implements the store interfaces against PostgreSQL
// using database/sql over the pgx stdlib driver. Each store resolves the
// client and assignee references its own domain relates to, so source
// readers never perform cross-domain joins themselves.
package postgres
