package entity

// Book representa un título del catálogo. Solo se usa para enriquecer reportes.
type Book struct {
	ID        string
	CompanyID string
	ISBN      string
	Title     string
}

// Site representa una sede (colegio, bodega) donde se guarda inventario.
type Site struct {
	ID        string
	CompanyID string
	Name      string
	Address   string
}
