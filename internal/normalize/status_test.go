package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"domainlens/internal/lookup/models"
)

func TestTranslateStatuses(t *testing.T) {
	t.Run("synonyms collapse to shared labels", func(t *testing.T) {
		got := TranslateStatuses([]string{"ok", "clientTransferProhibited"})
		assert.Equal(t, []string{"active", "transfer-locked"}, got)
	})

	t.Run("separators and case are ignored", func(t *testing.T) {
		got := TranslateStatuses([]string{"client transfer prohibited", "CLIENT_UPDATE_PROHIBITED"})
		assert.Equal(t, []string{"transfer-locked", "update-locked"}, got)
	})

	t.Run("unknown tokens pass through unmodified", func(t *testing.T) {
		got := TranslateStatuses([]string{"ok", "someRegistrySpecificState"})
		assert.Equal(t, []string{"active", "someRegistrySpecificState"}, got)
	})

	t.Run("duplicate labels are collapsed", func(t *testing.T) {
		got := TranslateStatuses([]string{"clientTransferProhibited", "serverTransferProhibited"})
		assert.Equal(t, []string{"transfer-locked"}, got)
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, TranslateStatuses(nil))
	})
}

func TestClassifyLock(t *testing.T) {
	t.Run("three client prohibitions mean fully locked", func(t *testing.T) {
		lock := classifyLock([]string{
			"clientDeleteProhibited", "clientTransferProhibited", "clientUpdateProhibited",
		})
		assert.Equal(t, models.LockFull, lock)
	})

	t.Run("server-side prohibitions alone are not a full lock", func(t *testing.T) {
		lock := classifyLock([]string{
			"serverDeleteProhibited", "serverTransferProhibited", "serverUpdateProhibited",
		})
		assert.Equal(t, models.LockTransfer, lock)
	})

	t.Run("transfer prohibition alone is transfer-locked", func(t *testing.T) {
		assert.Equal(t, models.LockTransfer, classifyLock([]string{"clientTransferProhibited"}))
	})

	t.Run("no prohibitions means no lock label", func(t *testing.T) {
		assert.Equal(t, models.UpdateLock(""), classifyLock([]string{"ok"}))
	})
}
