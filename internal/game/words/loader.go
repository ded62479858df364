package words

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/picture-game/internal/apperrors"
)

// LoadDir 读取词库目录：索引文件每行一个词表文件名，词表每行一个词。
// 空行会被跳过；任一词表为空都视为配置错误。
func LoadDir(dir, index string) ([]*Bank, error) {
	names, err := readLines(filepath.Join(dir, index))
	if err != nil {
		return nil, fmt.Errorf("read word list index: %w", err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("word list index %s: %w", index, apperrors.ErrEmptyBank)
	}

	banks := make([]*Bank, 0, len(names))
	for _, name := range names {
		lines, err := readLines(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read word list %s: %w", name, err)
		}
		bank, err := NewBank(name, lines)
		if err != nil {
			return nil, fmt.Errorf("word list %s: %w", name, err)
		}
		log.Info().Str("list", name).Int("words", bank.Len()).Msg("word list loaded")
		banks = append(banks, bank)
	}
	return banks, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
