// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"fmt"
	"os"
	"path/filepath"
)

const sampleCSV = `title,keywords
Apa Itu Bitcoin? Panduan Lengkap untuk Pemula,"bitcoin, crypto, panduan pemula"
Cara Membeli Ethereum dengan Aman,"ethereum, beli crypto, wallet"
5 Kesalahan Trading Crypto yang Harus Dihindari,"trading, kesalahan, tips crypto"
Memahami Blockchain dalam 10 Menit,"blockchain, teknologi, edukasi"
Staking Crypto: Penghasilan Pasif dari Aset Digital,"staking, passive income, defi"
`

const sampleTXT = `# Sample bulk titles, one per line. Lines starting with # are ignored.
Apa Itu DeFi dan Bagaimana Cara Kerjanya
NFT untuk Pemula: Panduan Praktis
Perbedaan Coin dan Token yang Wajib Diketahui
Cara Aman Menyimpan Crypto di Hardware Wallet
`

// WriteSampleFiles drops example upload files into dir/samples so a fresh
// install has something to try the bulk upload with. Existing files are
// never overwritten.
func WriteSampleFiles(dir string) error {
	samplesDir := filepath.Join(dir, "samples")
	if err := os.MkdirAll(samplesDir, 0o755); err != nil {
		return fmt.Errorf("creating samples directory: %w", err)
	}

	files := map[string]string{
		"sample_titles.csv": sampleCSV,
		"sample_titles.txt": sampleTXT,
	}

	for name, content := range files {
		path := filepath.Join(samplesDir, name)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
	}

	return nil
}
