package pan

import (
	"testing"

	"github.com/alovak/cardvault/internal/check"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	require.Equal(t, "4111111111111111", Normalize("4111-1111-1111-1111"))
	require.Equal(t, "4111111111111111", Normalize(" 4111 1111\t1111 1111 "))
	require.Equal(t, "4111111111111111", Normalize("card: 4111.1111.1111.1111"))
	require.Equal(t, "", Normalize("abc"))
}

func TestMask(t *testing.T) {
	require.Equal(t, "411111******1111", Mask("4111111111111111"))
	require.Equal(t, "378282*****0005", Mask("3782-822463-10005"))
	require.Equal(t, "*****8231", Mask("242038231"))
	require.Equal(t, "***", Mask("123"))
	require.Equal(t, "", Mask(""))
}

func TestLastNAndBIN(t *testing.T) {
	require.Equal(t, "1111", LastN("4111111111111111", 4))
	require.Equal(t, "12", LastN("12", 4))
	require.Equal(t, "411111", BIN("4111111111111111"))
	require.Equal(t, "4111", BIN("4111"))
}

func TestHashHMAC(t *testing.T) {
	a := HashHMAC("4111111111111111", []byte("k1"))
	b := HashHMAC("4111111111111111", []byte("k1"))
	c := HashHMAC("4111111111111111", []byte("k2"))
	require.Len(t, a, 32)
	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
}

func TestGenerate(t *testing.T) {
	for i := 0; i < 20; i++ {
		number, err := Generate("421234", 16)
		require.NoError(t, err)
		require.Len(t, number, 16)
		require.True(t, check.Luhn(number), number)
		require.Equal(t, check.Visa, check.IssuerName(number))
	}

	_, err := Generate("42a234", 16)
	require.Error(t, err)
	_, err = Generate("421234", 25)
	require.Error(t, err)
	_, err = Generate("4212344212344212", 16)
	require.Error(t, err)
}
