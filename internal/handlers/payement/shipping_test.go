package payement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeShipping(t *testing.T) {
	// La gratuité ne démarre qu'au-delà de 1000, pas à 1000 pile
	assert.Equal(t, FlatShippingFee, ComputeShipping(0))
	assert.Equal(t, FlatShippingFee, ComputeShipping(999.99))
	assert.Equal(t, FlatShippingFee, ComputeShipping(1000))
	assert.Equal(t, 0.0, ComputeShipping(1000.01))
	assert.Equal(t, 0.0, ComputeShipping(2500))
}

func TestUnitAmount(t *testing.T) {
	// 19.99 n'est pas représentable exactement en float64 : la troncature
	// donnerait 1998 centimes, l'arrondi doit donner 1999
	assert.Equal(t, int64(1999), unitAmount(19.99))
	assert.Equal(t, int64(1001), unitAmount(10.01))
	assert.Equal(t, int64(5000), unitAmount(50))
	assert.Equal(t, int64(0), unitAmount(0))
	assert.Equal(t, int64(29), unitAmount(0.29))
}
