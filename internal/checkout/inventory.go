package checkout

import (
	"context"
	"fmt"
	"log"
)

// Inventory Reservation : une update conditionnelle atomique par
// décrémentation, dans l'ordre de soumission des lignes. Pas de tri ni de
// verrou inter-lignes : un échec fait échouer la transaction entière, donc
// une réservation partielle ne survit jamais.

func (s *Service) reserveStock(ctx context.Context, deductions []StockDeduction) error {
	for _, d := range deductions {
		ok, err := s.Products.Reserve(ctx, d)
		if err != nil {
			return fmt.Errorf("réservation %s %s/%s: %w", d.Kind, d.ProductID, d.SKU, err)
		}
		if !ok {
			// Le stock constaté en 4.1 a été consommé par une commande
			// concurrente : c'est le seul contrôle qui fait foi
			return outOfStock(d.ProductID, d.SKU, 0, d.Quantity, true)
		}
	}
	return nil
}

// releaseStock inverse chaque décrémentation exactement une fois (chemin de
// compensation, hors transaction). Un échec ici est critique : il est journalisé
// pour escalade opérateur, jamais retenté automatiquement.
func (s *Service) releaseStock(ctx context.Context, deductions []StockDeduction) (failed int) {
	for _, d := range deductions {
		if err := s.Products.Release(ctx, d); err != nil {
			failed++
			log.Printf("🚨 CRITIQUE: restitution stock impossible (%s %s/%s qty=%d): %v",
				d.Kind, d.ProductID, d.SKU, d.Quantity, err)
		}
	}
	return failed
}
