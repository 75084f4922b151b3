package main

import (
	"database/sql"
	"fmt"

	"plantlink/internal/sensor"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

func NewRepository(path string) *sensor.Repository {
	var db *sql.DB
	var err error

	if db, err = sql.Open("sqlite3", "file:"+path); err != nil {
		panic(fmt.Errorf("Couldn't open database:\n%w", err))
	}
	if _, err := db.Exec(sensor.Schema); err != nil {
		panic(fmt.Errorf("Couldn't initialise database:\n%w", err))
	}

	return &sensor.Repository{Db: db}
}
