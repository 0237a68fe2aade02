// seed_catalog genera un script SQL idempotente para poblar el catálogo (libros o sedes)
// a partir de un CSV exportado del sistema de la editorial.
//
// Uso: go run ./cmd/seed_catalog -company <id> -kind books|sites [-encoding auto|utf8|latin1] [-out archivo.sql] catalogo.csv
//
// Columnas esperadas (con fila de cabecera):
//
//	books: id,isbn,title
//	sites: id,name,address
//
// Si la columna id viene vacía se deriva un UUID estable de empresa + ISBN (o nombre),
// así que correr el script dos veces no duplica filas.
//
// Con la caché Redis activa, después de aplicar el script hay que vaciarla con
// DELETE /api/catalog/cache (rol admin).
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

func main() {
	company := flag.String("company", "", "company_id dueño del catálogo (obligatorio)")
	kind := flag.String("kind", KindBooks, "books | sites")
	encoding := flag.String("encoding", EncodingAuto, "auto | utf8 | latin1")
	outPath := flag.String("out", "", "archivo de salida (por defecto internal/infrastructure/postgres/migrations/seed_<kind>.sql)")
	flag.Parse()

	if *company == "" || flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}
	rows, err := ParseCatalog(raw, *kind, *encoding, *company)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Procesar CSV: %v\n", err)
		os.Exit(1)
	}

	if *outPath == "" {
		*outPath = filepath.Join(findModuleRoot(), "internal", "infrastructure", "postgres", "migrations", "seed_"+*kind+".sql")
	}
	out, err := os.Create(*outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := WriteSQL(out, *kind, rows); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d %s\n", *outPath, len(rows), *kind)
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
