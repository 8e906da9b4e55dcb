package produto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeriveStatus(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		expiration time.Time
		want       Status
	}{
		{"past date", now.AddDate(0, 0, -1), StatusVencidos},
		{"future date", now.AddDate(0, 0, 30), StatusEmLiberacao},
		{"same instant", now, StatusEmLiberacao},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStatus(tt.expiration, now))
		})
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range Statuses() {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, Status("cancelados").Valid())
	assert.False(t, Status("").Valid())
}

func TestStatusPinned(t *testing.T) {
	assert.True(t, StatusLiberados.Pinned())
	assert.True(t, StatusDoados.Pinned())
	assert.False(t, StatusEmLiberacao.Pinned())
	assert.False(t, StatusVencidos.Pinned())
}

func TestStatusBadge(t *testing.T) {
	tests := []struct {
		status  Status
		label   string
		variant string
	}{
		{StatusEmLiberacao, "Em liberação", "secondary"},
		{StatusLiberados, "Liberado", "default"},
		{StatusVencidos, "Vencido", "destructive"},
		{StatusDoados, "Doado", "outline"},
	}

	for _, tt := range tests {
		b := tt.status.Badge()
		assert.Equal(t, tt.label, b.Label)
		assert.Equal(t, tt.variant, b.Variant)
	}
}
