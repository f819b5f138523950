// Package postgres implements the store on the gorm connection owned by the
// config services.
package postgres

type Postgres struct {
}
