package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeMySQLDSN(t *testing.T) {
	got := normalizeMySQLDSN("jdbc:mysql://root:pw@db:3306/blog?useSSL=false&serverTimezone=UTC&useUnicode=true", "", "")
	assert.Equal(t, "root:pw@tcp(db:3306)/blog?charset=utf8mb4&loc=UTC&parseTime=true&tls=false", got)

	got = normalizeMySQLDSN("mysql://db:3306/blog?characterEncoding=utf8", "app", "secret")
	assert.Equal(t, "app:secret@tcp(db:3306)/blog?charset=utf8&parseTime=true", got)

	plain := "app:secret@tcp(127.0.0.1:3306)/blog?parseTime=true"
	assert.Equal(t, plain, normalizeMySQLDSN(plain, "x", "y"))
}

func TestMaskDSN(t *testing.T) {
	assert.Equal(t, "app:****@tcp(db:3306)/blog", maskDSN("app:secret@tcp(db:3306)/blog"))
	assert.Equal(t, "tcp(db:3306)/blog", maskDSN("tcp(db:3306)/blog"))
}

func TestNewGormSQLite(t *testing.T) {
	db, err := NewGorm(Opts{Driver: "sqlite", DSN: "file::memory:", MaxOpenConns: 1, LogLevel: "silent"})
	require.NoError(t, err)
	var one int
	require.NoError(t, db.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)
}

func TestNewGormUnsupported(t *testing.T) {
	_, err := NewGorm(Opts{Driver: "oracle"})
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
	assert.False(t, IsSQL("mongo"))
	assert.True(t, IsSQL("sqlite"))
}
