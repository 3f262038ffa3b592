package memory

import (
	"context"

	"github.com/Astemirdum/perpustakaan/library/internal/model"
)

// StarterCatalog is the catalog a fresh deployment opens with. The SQL
// migrations insert the same rows.
func StarterCatalog() []model.Book {
	return []model.Book{
		{
			ID:              "6f1c1a52-6a0e-4b8e-9a51-2d8b9b0c0001",
			Title:           "Laskar Pelangi",
			Author:          "Andrea Hirata",
			Description:     "Novel tentang perjuangan anak-anak dari Pulau Belitong untuk mendapatkan pendidikan yang layak.",
			PublicationYear: 2005,
			Publisher:       "Bentang Pustaka",
			ISBN:            "9789793062792",
			Category:        "Novel",
			Language:        "Indonesia",
			PageCount:       529,
			CoverURL:        "https://upload.wikimedia.org/wikipedia/id/8/8e/Laskar_pelangi_sampul.jpg",
			Available:       true,
		},
		{
			ID:              "6f1c1a52-6a0e-4b8e-9a51-2d8b9b0c0002",
			Title:           "Bumi Manusia",
			Author:          "Pramoedya Ananta Toer",
			Description:     "Novel sejarah yang berlatar belakang kehidupan pribumi pada masa kolonial Belanda.",
			PublicationYear: 1980,
			Publisher:       "Hasta Mitra",
			ISBN:            "9789799731234",
			Category:        "Novel Sejarah",
			Language:        "Indonesia",
			PageCount:       535,
			Available:       true,
		},
		{
			ID:              "6f1c1a52-6a0e-4b8e-9a51-2d8b9b0c0003",
			Title:           "Filosofi Teras",
			Author:          "Henry Manampiring",
			Description:     "Buku yang membahas tentang filsafat Stoa dan bagaimana menerapkannya dalam kehidupan sehari-hari.",
			PublicationYear: 2018,
			Publisher:       "Kompas",
			ISBN:            "9786024125189",
			Category:        "Filsafat",
			Language:        "Indonesia",
			PageCount:       320,
			Available:       true,
		},
		{
			ID:              "6f1c1a52-6a0e-4b8e-9a51-2d8b9b0c0004",
			Title:           "Perahu Kertas",
			Author:          "Dee Lestari",
			Description:     "Novel tentang kisah cinta dan petualangan dua orang yang bercita-cita menjadi seniman.",
			PublicationYear: 2009,
			Publisher:       "Bentang Pustaka",
			ISBN:            "9789791227780",
			Category:        "Novel",
			Language:        "Indonesia",
			PageCount:       444,
			Available:       true,
		},
	}
}

// Seed adds the starter catalog to the store.
func (s *Store) Seed(ctx context.Context) error {
	for _, b := range StarterCatalog() {
		if _, err := s.CreateBook(ctx, b); err != nil {
			return err
		}
	}
	return nil
}
