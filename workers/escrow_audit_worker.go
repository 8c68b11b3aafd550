// workers/escrow_audit_worker.go
package workers

import (
	"context"
	"log"
	"time"

	"earn-quest-service/models"
	"earn-quest-service/services"

	"gorm.io/gorm"
)

// EscrowAuditWorker periodically verifies escrow accounting:
//
//   - per escrow: total_deposited >= total_paid_out + total_refunded
//   - per escrow: a deactivated escrow holds nothing
//   - per token: the treasury balance covers the sum of active escrow holdings
//
// Violations are logged loudly; the worker never mutates anything.
type EscrowAuditWorker struct {
	db       *gorm.DB
	assets   services.AssetTransfer
	interval time.Duration
}

func NewEscrowAuditWorker(db *gorm.DB, assets services.AssetTransfer) *EscrowAuditWorker {
	return &EscrowAuditWorker{
		db:       db,
		assets:   assets,
		interval: 5 * time.Minute,
	}
}

func (w *EscrowAuditWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Escrow Audit Worker…")
	go w.run(ctx)
}

func (w *EscrowAuditWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if violations := w.Audit(); violations > 0 {
				log.Printf("🚨 Escrow audit found %d violation(s)", violations)
			}
		case <-ctx.Done():
			log.Println("⏹️ Escrow Audit Worker stopped")
			return
		}
	}
}

// Audit runs one full scan and returns the number of violations found.
func (w *EscrowAuditWorker) Audit() int {
	var escrows []models.EscrowInfo
	if err := w.db.Find(&escrows).Error; err != nil {
		log.Printf("❌ Escrow audit query failed: %v", err)
		return 0
	}

	violations := 0
	heldPerToken := map[string]int64{}

	for _, e := range escrows {
		available := e.Available()
		if available < 0 {
			violations++
			log.Printf("🚨 Escrow %s over-disbursed: deposited=%d paid_out=%d refunded=%d",
				e.QuestID, e.TotalDeposited, e.TotalPaidOut, e.TotalRefunded)
			continue
		}
		if !e.IsActive && available != 0 {
			violations++
			log.Printf("🚨 Escrow %s is inactive but still holds %d", e.QuestID, available)
			continue
		}
		if e.IsActive {
			heldPerToken[e.Token] += available
		}
	}

	for token, held := range heldPerToken {
		balance, err := w.assets.BalanceOf(w.db, token, services.TreasuryHolder)
		if err != nil {
			log.Printf("❌ Escrow audit balance check failed for %s: %v", token, err)
			continue
		}
		if balance < held {
			violations++
			log.Printf("🚨 Treasury balance %d for %s does not cover %d held in escrow", balance, token, held)
		}
	}

	return violations
}
