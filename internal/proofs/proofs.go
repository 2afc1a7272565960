// Package proofs stores the photos captured before a transaction is
// submitted. Transactions refer to them only by ref.
package proofs

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/ppestock/internal/imaging"
	"github.com/erazemk/ppestock/internal/model"
)

// FileName is the name a proof is exported under:
// <item>_<variant>_<unix millis>.jpg.
func FileName(item, variant string, at time.Time) string {
	return fmt.Sprintf("%s_%s_%d.jpg", item, variant, at.UnixMilli())
}

// Capture normalizes a raw photo and stores it as a new proof.
func Capture(ctx context.Context, db *sql.DB, r io.Reader, item, variant string, loc *model.Location, at time.Time) (*model.Proof, error) {
	img, err := imaging.Process(r)
	if err != nil {
		return nil, err
	}
	p := &model.Proof{
		FileName:  FileName(item, variant, at),
		Timestamp: at,
		Location:  loc,
		MIME:      img.MIME,
		Data:      img.Data,
	}
	if err := Save(ctx, db, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Save stores a proof, assigning a ref if it has none.
func Save(ctx context.Context, db *sql.DB, p *model.Proof) error {
	if p.Ref == "" {
		p.Ref = uuid.NewString()
	}
	var lat, lng sql.NullFloat64
	if p.Location != nil {
		lat = sql.NullFloat64{Float64: p.Location.Lat, Valid: true}
		lng = sql.NullFloat64{Float64: p.Location.Lng, Valid: true}
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO proofs (ref, file_name, mime, data, latitude, longitude, captured_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.Ref, p.FileName, p.MIME, p.Data, lat, lng, p.Timestamp.UTC(),
	)
	if err != nil {
		return fmt.Errorf("storing proof: %w", err)
	}
	return nil
}

// Get returns a proof with its image data, or nil if ref is unknown.
func Get(ctx context.Context, db *sql.DB, ref string) (*model.Proof, error) {
	p := &model.Proof{Ref: ref}
	var lat, lng sql.NullFloat64
	err := db.QueryRowContext(ctx,
		`SELECT file_name, mime, data, latitude, longitude, captured_at FROM proofs WHERE ref = ?`, ref,
	).Scan(&p.FileName, &p.MIME, &p.Data, &lat, &lng, &p.Timestamp)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting proof: %w", err)
	}
	if lat.Valid && lng.Valid {
		p.Location = &model.Location{Lat: lat.Float64, Lng: lng.Float64}
	}
	return p, nil
}

// Names maps each known ref to its file name.
func Names(ctx context.Context, db *sql.DB, refs []string) (map[string]string, error) {
	names := make(map[string]string, len(refs))
	if len(refs) == 0 {
		return names, nil
	}

	args := make([]any, len(refs))
	for i, r := range refs {
		args[i] = r
	}
	rows, err := db.QueryContext(ctx,
		`SELECT ref, file_name FROM proofs WHERE ref IN (?`+strings.Repeat(",?", len(refs)-1)+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("listing proof names: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ref, name string
		if err := rows.Scan(&ref, &name); err != nil {
			return nil, fmt.Errorf("scanning proof name: %w", err)
		}
		names[ref] = name
	}
	return names, rows.Err()
}
