// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"context"
	"fmt"
	"strings"
)

// MockGenerator produces deterministic articles without any network
// calls. It backs development setups and tests.
type MockGenerator struct{}

// NewMockGenerator creates a mock article generator.
func NewMockGenerator() *MockGenerator { return &MockGenerator{} }

var mockSections = []struct {
	heading string
	body    string
}{
	{"Latar Belakang", "Pasar aset digital terus berkembang dan menarik perhatian investor baru setiap tahunnya. Memahami dasar teknologi di balik setiap proyek membantu mengambil keputusan yang lebih terukur. Artikel ini membahas topik tersebut secara bertahap mulai dari konsep paling dasar."},
	{"Cara Kerja", "Setiap transaksi dicatat pada buku besar terdistribusi yang diverifikasi oleh jaringan. Mekanisme konsensus memastikan seluruh peserta memiliki salinan data yang sama tanpa otoritas pusat. Proses verifikasi ini yang membuat pencatatan sulit untuk dimanipulasi."},
	{"Manfaat dan Risiko", "Selain potensi pertumbuhan nilai, teknologi ini menawarkan transparansi dan biaya transfer yang lebih rendah. Di sisi lain volatilitas harga tetap tinggi sehingga manajemen risiko menjadi keharusan. Jangan pernah mengalokasikan dana melebihi kemampuan menanggung kerugian."},
	{"Langkah Praktis", "Mulailah dengan membuka akun pada platform tepercaya dan aktifkan autentikasi dua faktor. Pelajari cara menyimpan aset secara mandiri sebelum menambah nilai portofolio. Catat setiap transaksi untuk keperluan evaluasi dan pelaporan."},
	{"Kesalahan Umum", "Banyak pemula membeli hanya karena mengikuti tren tanpa riset mandiri. Kesalahan lain yang sering terjadi adalah menyimpan frasa pemulihan secara sembarangan. Disiplin pada rencana awal jauh lebih penting daripada mengejar keuntungan cepat."},
	{"Kesimpulan", "Memahami fundamental adalah bekal terbaik sebelum terjun lebih dalam. Mulai dari nominal kecil, terus belajar, dan evaluasi strategi secara berkala. Konsistensi jangka panjang biasanya mengalahkan spekulasi jangka pendek."},
}

// Generate builds a markdown article that lands inside the requested
// word range by repeating topical sections as needed.
func (g *MockGenerator) Generate(_ context.Context, req Request) (*Article, error) {
	minWords := req.MinWords
	if minWords < 1 {
		minWords = 300
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s menjadi salah satu topik yang paling banyak dicari saat ini. ", req.Title)
	b.WriteString("Panduan ini merangkum hal-hal penting yang perlu dipahami sebelum memulai.\n")

	words := CountWords(b.String())
	for i := 0; words < minWords; i++ {
		section := mockSections[i%len(mockSections)]
		fmt.Fprintf(&b, "\n## %s\n\n%s\n", section.heading, section.body)
		words = CountWords(b.String())
	}

	body := b.String()
	return &Article{
		Title:           req.Title,
		Body:            body,
		MetaDescription: excerpt(body, 160),
		Keywords:        req.Keywords,
		WordCount:       CountWords(body),
	}, nil
}
