package partner

import (
	"strings"
	"testing"

	"github.com/stockroom/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSupplierParams() SupplierParams {
	return SupplierParams{
		RUT:            "76.123.456-k",
		CompanyName:    "  Distribuidora Sur  ",
		ContactName:    "Carla Muñoz",
		Email:          "Ventas@DistSur.CL",
		Phone:          "+56 2 2345 6789",
		LineOfBusiness: "Panadería",
	}
}

func TestNewSupplier(t *testing.T) {
	t.Run("normalizes fields", func(t *testing.T) {
		s, err := NewSupplier(validSupplierParams())
		require.NoError(t, err)

		assert.Equal(t, "76123456-K", s.RUT)
		assert.Equal(t, "Distribuidora Sur", s.CompanyName)
		assert.Equal(t, "ventas@distsur.cl", s.Email)
		assert.Equal(t, 1, s.GetVersion())
		require.Len(t, s.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeSupplierCreated, s.GetDomainEvents()[0].EventType())
	})

	tests := []struct {
		name  string
		edit  func(*SupplierParams)
		field string
	}{
		{"missing RUT", func(p *SupplierParams) { p.RUT = "" }, FieldRUT},
		{"RUT without dash", func(p *SupplierParams) { p.RUT = "761234569" }, FieldRUT},
		{"RUT with bad verifier", func(p *SupplierParams) { p.RUT = "76.123.456-X" }, FieldRUT},
		{"blank company", func(p *SupplierParams) { p.CompanyName = "   " }, FieldCompanyName},
		{"long company", func(p *SupplierParams) { p.CompanyName = strings.Repeat("a", 101) }, FieldCompanyName},
		{"bad email", func(p *SupplierParams) { p.Email = "ventas@" }, FieldEmail},
		{"short phone", func(p *SupplierParams) { p.Phone = "12345" }, FieldPhone},
		{"phone with letters", func(p *SupplierParams) { p.Phone = "+56 9 ABCD 1234" }, FieldPhone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := validSupplierParams()
			tt.edit(&params)
			_, err := NewSupplier(params)
			require.Error(t, err)
			assert.ErrorIs(t, err, shared.ErrValidation)
			var verr *shared.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}

	t.Run("accented names up to the limit", func(t *testing.T) {
		params := validSupplierParams()
		params.CompanyName = strings.Repeat("Ñ", 100)
		params.ContactName = strings.Repeat("ó", 100)
		_, err := NewSupplier(params)
		assert.NoError(t, err)
	})

	t.Run("phone is optional", func(t *testing.T) {
		params := validSupplierParams()
		params.Phone = ""
		_, err := NewSupplier(params)
		assert.NoError(t, err)
	})
}

func TestSupplier_Update(t *testing.T) {
	s, err := NewSupplier(validSupplierParams())
	require.NoError(t, err)
	s.ClearDomainEvents()

	params := s.Params()
	params.ContactName = "Pedro Rojas"
	require.NoError(t, s.Update(params))
	assert.Equal(t, "Pedro Rojas", s.ContactName)
	assert.Equal(t, 2, s.GetVersion())
	require.Len(t, s.GetDomainEvents(), 1)

	params.Email = "invalid"
	assert.Error(t, s.Update(params))
	assert.Equal(t, "ventas@distsur.cl", s.Email)
}
