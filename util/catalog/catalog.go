/*
 * vtape - Tape volume catalog.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	config "github.com/rcornwell/vtape/config/configparser"

	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS volumes (
	serial       TEXT NOT NULL PRIMARY KEY,
	path         TEXT NOT NULL UNIQUE,
	record_index INTEGER NOT NULL DEFAULT 0,
	created      INTEGER NOT NULL,
	updated      INTEGER NOT NULL
)`

var ErrUnknownVolume = errors.New("unknown volume")

// One tape image known to the catalog.
type Volume struct {
	Serial      string    // ULID assigned when first seen
	Path        string    // Absolute path of backing file
	RecordIndex uint32    // Record counter at last save
	Created     time.Time // First attach
	Updated     time.Time // Last save
}

// Catalog of volumes kept in a sqlite database.
type Catalog struct {
	db   *sql.DB
	name string
}

var (
	defaultMu      sync.Mutex
	defaultCatalog *Catalog
)

// register catalog option on initialize.
func init() {
	config.RegisterOption("CATALOG", create)
}

// Open catalog configured by the CATALOG option.
func create(_ int, fileName string, _ []config.Option) error {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultCatalog != nil {
		return fmt.Errorf("can't have more then one catalog, previous: %s", defaultCatalog.name)
	}
	cat, err := Open(fileName)
	if err != nil {
		return err
	}
	defaultCatalog = cat
	return nil
}

// Catalog set by configuration, nil if none.
func Default() *Catalog {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultCatalog
}

// Close configured catalog.
func CloseDefault() error {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultCatalog == nil {
		return nil
	}
	err := defaultCatalog.Close()
	defaultCatalog = nil
	return err
}

// Open or create catalog database.
func Open(name string) (*Catalog, error) {
	db, err := sql.Open("sqlite", name)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", name, err)
	}
	// Tape workers save from their own goroutines.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create catalog %s: %w", name, err)
	}
	return &Catalog{db: db, name: name}, nil
}

// Close database.
func (cat *Catalog) Close() error {
	return cat.db.Close()
}

// Find volume by backing file, registering it if new.
func (cat *Catalog) Lookup(path string) (*Volume, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	vol, err := cat.find(`SELECT serial, path, record_index, created, updated FROM volumes WHERE path = ?`, abs)
	if err == nil {
		return vol, nil
	}
	if !errors.Is(err, ErrUnknownVolume) {
		return nil, err
	}

	now := time.Now()
	vol = &Volume{Serial: ulid.Make().String(), Path: abs, Created: now, Updated: now}
	_, err = cat.db.Exec(`INSERT INTO volumes (serial, path, record_index, created, updated) VALUES (?, ?, 0, ?, ?)`,
		vol.Serial, vol.Path, now.UnixMilli(), now.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("register volume %s: %w", abs, err)
	}
	return vol, nil
}

// Find volume by serial.
func (cat *Catalog) Get(serial string) (*Volume, error) {
	return cat.find(`SELECT serial, path, record_index, created, updated FROM volumes WHERE serial = ?`, serial)
}

func (cat *Catalog) find(query string, arg string) (*Volume, error) {
	var (
		vol     Volume
		created int64
		updated int64
	)
	err := cat.db.QueryRow(query, arg).Scan(&vol.Serial, &vol.Path, &vol.RecordIndex, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVolume, arg)
	}
	if err != nil {
		return nil, err
	}
	vol.Created = time.UnixMilli(created)
	vol.Updated = time.UnixMilli(updated)
	return &vol, nil
}

// Persist record counter of volume.
func (cat *Catalog) SaveIndex(serial string, index uint32) error {
	res, err := cat.db.Exec(`UPDATE volumes SET record_index = ?, updated = ? WHERE serial = ?`,
		index, time.Now().UnixMilli(), serial)
	if err != nil {
		return fmt.Errorf("save volume %s: %w", serial, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownVolume, serial)
	}
	return nil
}

// All volumes ordered by serial.
func (cat *Catalog) List() ([]Volume, error) {
	rows, err := cat.db.Query(`SELECT serial, path, record_index, created, updated FROM volumes ORDER BY serial`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	vols := []Volume{}
	for rows.Next() {
		var (
			vol     Volume
			created int64
			updated int64
		)
		if err := rows.Scan(&vol.Serial, &vol.Path, &vol.RecordIndex, &created, &updated); err != nil {
			return nil, err
		}
		vol.Created = time.UnixMilli(created)
		vol.Updated = time.UnixMilli(updated)
		vols = append(vols, vol)
	}
	return vols, rows.Err()
}
