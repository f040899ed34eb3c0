package adapters

import "cardlens/internal/feature/catalog/domain/entity"

// DefaultCards はカタログCSVが存在しない場合に書き出す初期データです。
func DefaultCards() []entity.Card {
	return []entity.Card{
		{Name: "Pikachu VMAX", Series: "Sword & Shield", BasePrice: 50, RarityScore: 85},
		{Name: "Charizard GX", Series: "Sun & Moon", BasePrice: 120, RarityScore: 95},
		{Name: "Mewtwo EX", Series: "XY", BasePrice: 80, RarityScore: 75},
		{Name: "Blastoise V", Series: "Sword & Shield", BasePrice: 45, RarityScore: 70},
		{Name: "Venusaur GX", Series: "Sun & Moon", BasePrice: 60, RarityScore: 72},
		{Name: "Lucario VMAX", Series: "Sword & Shield", BasePrice: 55, RarityScore: 78},
		{Name: "Rayquaza VMAX", Series: "Sword & Shield", BasePrice: 90, RarityScore: 88},
		{Name: "Garchomp V", Series: "Brilliant Stars", BasePrice: 40, RarityScore: 65},
		{Name: "Eevee VMAX", Series: "Evolving Skies", BasePrice: 35, RarityScore: 68},
		{Name: "Gengar VMAX", Series: "Fusion Strike", BasePrice: 65, RarityScore: 80},
	}
}
