// Package logfile настраивает файл журнала с ротацией по размеру.
package logfile

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

const megabyte = 1 << 20

// New возвращает журнал в path. При достижении maxSize байт файл переименовывается,
// хранится не больше backups старых копий.
func New(path string, maxSize int64, backups int) (*lumberjack.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("каталог журнала: %w", err)
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    sizeInMegabytes(maxSize),
		MaxBackups: backups,
	}, nil
}

// sizeInMegabytes переводит байты в мегабайты с округлением вверх, не меньше одного.
func sizeInMegabytes(size int64) int {
	if size <= megabyte {
		return 1
	}
	return int((size + megabyte - 1) / megabyte)
}
