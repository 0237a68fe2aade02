package main

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Tipos de catálogo.
const (
	KindBooks = "books"
	KindSites = "sites"
)

// Codificaciones del CSV de entrada.
const (
	EncodingAuto   = "auto"
	EncodingUTF8   = "utf8"
	EncodingLatin1 = "latin1"
)

// namespace de los UUID derivados (uuid v5).
var namespace = uuid.MustParse("6f1c2a8e-3b7d-4e55-9a0c-2d4b8f61c0aa")

// Row fila normalizada: id + dos columnas de texto (isbn/title o name/address).
type Row struct {
	ID        string
	CompanyID string
	A, B      string
}

// ParseCatalog decodifica el CSV y normaliza sus filas. Filas sin título/nombre se omiten.
func ParseCatalog(raw []byte, kind, encoding, companyID string) ([]Row, error) {
	if kind != KindBooks && kind != KindSites {
		return nil, fmt.Errorf("kind %q no soportado", kind)
	}
	r, err := decode(raw, encoding)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv: %w", err)
	}
	if len(records) < 2 {
		return nil, nil
	}

	seen := make(map[string]bool)
	var rows []Row
	for _, rec := range records[1:] {
		for len(rec) < 3 {
			rec = append(rec, "")
		}
		id, a, b := strings.TrimSpace(rec[0]), strings.TrimSpace(rec[1]), strings.TrimSpace(rec[2])
		// books: a = isbn, b = title; sites: a = name, b = address
		if (kind == KindBooks && b == "") || (kind == KindSites && a == "") {
			continue
		}
		if id == "" {
			natural := a
			if kind == KindBooks && a == "" {
				natural = b
			}
			id = uuid.NewSHA1(namespace, []byte(companyID+"|"+kind+"|"+strings.ToLower(natural))).String()
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		rows = append(rows, Row{ID: id, CompanyID: companyID, A: a, B: b})
	}
	return rows, nil
}

func decode(raw []byte, encoding string) (io.Reader, error) {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	switch encoding {
	case EncodingUTF8:
		return bytes.NewReader(raw), nil
	case EncodingLatin1:
		return transform.NewReader(bytes.NewReader(raw), charmap.ISO8859_1.NewDecoder()), nil
	case EncodingAuto, "":
		if utf8.Valid(raw) {
			return bytes.NewReader(raw), nil
		}
		return transform.NewReader(bytes.NewReader(raw), charmap.ISO8859_1.NewDecoder()), nil
	}
	return nil, fmt.Errorf("encoding %q no soportado", encoding)
}

// WriteSQL escribe los INSERT ... ON CONFLICT (id) DO UPDATE.
func WriteSQL(w io.Writer, kind string, rows []Row) error {
	table, colA, colB := "books", "isbn", "title"
	if kind == KindSites {
		table, colA, colB = "sites", "name", "address"
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "-- Catálogo: %s (%d filas)\n", table, len(rows))
	buf.WriteString("-- Generado por cmd/seed_catalog\n\n")
	if len(rows) == 0 {
		_, err := w.Write(buf.Bytes())
		return err
	}
	fmt.Fprintf(&buf, "INSERT INTO %s (id, company_id, %s, %s) VALUES\n", table, colA, colB)
	for i, r := range rows {
		sep := ","
		if i == len(rows)-1 {
			sep = ""
		}
		fmt.Fprintf(&buf, "  ('%s', '%s', '%s', '%s')%s\n",
			escapeSQL(r.ID), escapeSQL(r.CompanyID), escapeSQL(r.A), escapeSQL(r.B), sep)
	}
	fmt.Fprintf(&buf, "ON CONFLICT (id) DO UPDATE SET %s = EXCLUDED.%s, %s = EXCLUDED.%s;\n", colA, colA, colB, colB)

	_, err := w.Write(buf.Bytes())
	return err
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
