package words

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/picture-game/internal/apperrors"
)

func newTestBank(t *testing.T, words ...string) *Bank {
	t.Helper()
	b, err := NewBank("test", words)
	require.NoError(t, err)
	b.SetRand(rand.New(rand.NewPCG(1, 2)))
	return b
}

func TestNewBank_Empty(t *testing.T) {
	t.Parallel()

	b, err := NewBank("empty", nil)
	assert.Nil(t, b)
	assert.ErrorIs(t, err, apperrors.ErrEmptyBank)
}

func TestBank_Accessors(t *testing.T) {
	t.Parallel()

	src := []string{"cat", "dog", "tree"}
	b := newTestBank(t, src...)

	assert.Equal(t, "test", b.Name())
	assert.Equal(t, 3, b.Len())
	assert.Equal(t, src, b.Words())

	// 返回副本，修改不影响词库
	got := b.Words()
	got[0] = "changed"
	assert.Equal(t, "cat", b.Words()[0])
}

func TestBank_DrawIsPermutation(t *testing.T) {
	t.Parallel()

	src := []string{"cat", "dog", "tree", "house", "car", "boat", "plane"}
	b := newTestBank(t, src...)

	for round := range 3 {
		drawn := make([]string, 0, len(src))
		for range src {
			drawn = append(drawn, b.Draw())
		}
		assert.ElementsMatch(t, src, drawn, "round %d should draw every word exactly once", round)
	}
}

func TestBank_DrawAfterExhaustionResets(t *testing.T) {
	t.Parallel()

	b := newTestBank(t, "only")
	assert.Equal(t, "only", b.Draw())
	assert.Equal(t, "only", b.Draw())
}

func TestBank_ResetMidCycle(t *testing.T) {
	t.Parallel()

	src := []string{"a", "b", "c", "d"}
	b := newTestBank(t, src...)
	b.Draw()
	b.Draw()
	b.Reset()

	drawn := make([]string, 0, len(src))
	for range src {
		drawn = append(drawn, b.Draw())
	}
	assert.ElementsMatch(t, src, drawn)
}

func TestBank_DuplicateWords(t *testing.T) {
	t.Parallel()

	src := []string{"sun", "sun", "moon"}
	b := newTestBank(t, src...)

	drawn := []string{b.Draw(), b.Draw(), b.Draw()}
	assert.ElementsMatch(t, src, drawn)
}

func TestBank_DeterministicWithSeed(t *testing.T) {
	t.Parallel()

	src := []string{"a", "b", "c", "d", "e"}
	b1 := newTestBank(t, src...)
	b2 := newTestBank(t, src...)

	for range 10 {
		assert.Equal(t, b1.Draw(), b2.Draw())
	}
}

func TestCombine(t *testing.T) {
	t.Parallel()

	animals := newTestBank(t, "cat", "dog")
	things := newTestBank(t, "chair")

	all, err := Combine(AllBankName, animals, things)
	require.NoError(t, err)
	assert.Equal(t, AllBankName, all.Name())
	assert.Equal(t, []string{"cat", "dog", "chair"}, all.Words())

	// 合并后的词库有独立的使用标记
	all.Draw()
	assert.Equal(t, 2, animals.unused)

	_, err = Combine(AllBankName)
	assert.ErrorIs(t, err, apperrors.ErrEmptyBank)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestLoadDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "index.txt", "animals.txt\n\nobjects.txt\n")
	writeFile(t, dir, "animals.txt", "cat\ndog\n\n  horse  \n")
	writeFile(t, dir, "objects.txt", "chair\r\ntable\r\n")

	banks, err := LoadDir(dir, "index.txt")
	require.NoError(t, err)
	require.Len(t, banks, 2)

	assert.Equal(t, "animals.txt", banks[0].Name())
	assert.Equal(t, []string{"cat", "dog", "horse"}, banks[0].Words())
	assert.Equal(t, "objects.txt", banks[1].Name())
	assert.Equal(t, []string{"chair", "table"}, banks[1].Words())
}

func TestLoadDir_Errors(t *testing.T) {
	t.Parallel()

	t.Run("missing index", func(t *testing.T) {
		t.Parallel()
		_, err := LoadDir(t.TempDir(), "index.txt")
		assert.Error(t, err)
	})

	t.Run("empty index", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeFile(t, dir, "index.txt", "\n")
		_, err := LoadDir(dir, "index.txt")
		assert.ErrorIs(t, err, apperrors.ErrEmptyBank)
	})

	t.Run("missing list", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeFile(t, dir, "index.txt", "gone.txt\n")
		_, err := LoadDir(dir, "index.txt")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, apperrors.ErrEmptyBank)
	})

	t.Run("empty list", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeFile(t, dir, "index.txt", "blank.txt\n")
		writeFile(t, dir, "blank.txt", "\n\n")
		_, err := LoadDir(dir, "index.txt")
		assert.ErrorIs(t, err, apperrors.ErrEmptyBank)
	})
}
