// Package words 提供词库：随机抽词，直到全部用完才会重复。
package words

import (
	"math/rand/v2"

	"github.com/palemoky/picture-game/internal/apperrors"
)

// AllBankName 合并词库的名称（公共与私人大厅都使用它）
const AllBankName = "all"

// Bank 循环词库。不是并发安全的，由持有它的大厅在锁内使用。
type Bank struct {
	name   string
	words  []string
	used   []bool
	unused int
	rng    *rand.Rand
}

// NewBank 创建词库，词表为空时返回 ErrEmptyBank
func NewBank(name string, words []string) (*Bank, error) {
	if len(words) == 0 {
		return nil, apperrors.ErrEmptyBank
	}
	b := &Bank{
		name:  name,
		words: append([]string(nil), words...),
		used:  make([]bool, len(words)),
		rng:   rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	b.Reset()
	return b, nil
}

// SetRand 替换随机源（大厅注入自己的随机源，测试可固定种子）
func (b *Bank) SetRand(r *rand.Rand) {
	if r != nil {
		b.rng = r
	}
}

// Name 词库名称
func (b *Bank) Name() string {
	return b.name
}

// Words 返回词表副本
func (b *Bank) Words() []string {
	return append([]string(nil), b.words...)
}

// Len 词数
func (b *Bank) Len() int {
	return len(b.words)
}

// Draw 从未使用的词中均匀抽取一个并标记为已用。
// 全部用完后先清空标记。
func (b *Bank) Draw() string {
	if b.unused == 0 {
		b.Reset()
	}

	n := b.rng.IntN(b.unused)
	for i, used := range b.used {
		if used {
			continue
		}
		if n == 0 {
			b.used[i] = true
			b.unused--
			return b.words[i]
		}
		n--
	}
	// unreachable: unused 与 used 标记保持一致
	panic("words: bank bookkeeping out of sync")
}

// Reset 清空所有已用标记
func (b *Bank) Reset() {
	clear(b.used)
	b.unused = len(b.words)
}

// Combine 把多个词库合并为一个新词库
func Combine(name string, banks ...*Bank) (*Bank, error) {
	var all []string
	for _, b := range banks {
		all = append(all, b.words...)
	}
	return NewBank(name, all)
}
