package cloudinary

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(Config{CloudName: "demo"}, zerolog.Nop())
	require.Error(t, err)
}

func TestSplitAssetNameUsesSubFolder(t *testing.T) {
	folder, publicID := splitAssetName("/portal/uploads/", "receipts/Bank Slip.png")
	require.Equal(t, "portal/uploads/receipts", folder)
	require.True(t, strings.HasPrefix(publicID, "Bank-Slip-"))

	folder, _ = splitAssetName("portal", "../../escape.pdf")
	require.Equal(t, "portal", folder)
}
