package db

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// TestBuildDSN は各ドライバー・接続方式のDSN文字列が正しく生成されることを検証します。
func TestBuildDSN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "sqlite default path",
			cfg:  Config{Driver: DriverSQLite},
			want: "cardlens.db",
		},
		{
			name: "explicit dsn wins",
			cfg:  Config{Driver: DriverSQLite, DSN: "file::memory:?cache=shared"},
			want: "file::memory:?cache=shared",
		},
		{
			name: "postgres tcp",
			cfg: Config{
				Driver: DriverPostgres, User: "testuser", Password: "testpass",
				Name: "testdb", Host: "localhost", Port: "5432",
			},
			want: "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=disable",
		},
		{
			name: "postgres cloud sql takes precedence over host",
			cfg: Config{
				Driver: DriverPostgres, User: "testuser", Password: "testpass", Name: "testdb",
				Host: "localhost", Port: "5432", InstanceName: "project:region:instance",
			},
			want: "host=/cloudsql/project:region:instance user=testuser password=testpass dbname=testdb sslmode=disable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, BuildDSN(tt.cfg))
		})
	}
}

// TestOpenerFor は未知のドライバーがエラーになることを検証します。
func TestOpenerFor(t *testing.T) {
	t.Parallel()

	for _, d := range []string{"", DriverSQLite, DriverPostgres} {
		op, err := OpenerFor(d)
		require.NoError(t, err, d)
		assert.NotNil(t, op)
	}

	_, err := OpenerFor("mysql")
	assert.ErrorIs(t, err, ErrUnknownDriver)
}

// TestConnectWithRetry_SuccessOnFirstTry は初回接続成功時にリトライせずDBを返すことを検証します。
func TestConnectWithRetry_SuccessOnFirstTry(t *testing.T) {
	t.Parallel()

	mockDB := &gorm.DB{}
	attempts := 0
	opener := func(dsn string) (*gorm.DB, error) {
		attempts++
		return mockDB, nil
	}

	db, err := ConnectWithRetry("test-dsn", 5*time.Second, opener)

	require.NoError(t, err)
	assert.Same(t, mockDB, db)
	assert.Equal(t, 1, attempts)
}

// TestConnectWithRetry_RetriesOnFailure は接続失敗時にリトライして最終的に成功することを検証します。
func TestConnectWithRetry_RetriesOnFailure(t *testing.T) {
	// リトライ間隔の待ち時間があるため並列実行しない

	mockDB := &gorm.DB{}
	attempts := 0
	opener := func(dsn string) (*gorm.DB, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("connection refused")
		}
		return mockDB, nil
	}

	db, err := ConnectWithRetry("test-dsn", 10*time.Second, opener)

	require.NoError(t, err)
	assert.Same(t, mockDB, db)
	assert.Equal(t, 3, attempts)
}

// TestConnectWithRetry_TimeoutAfterRetries はタイムアウト後にエラーが返されることを検証します。
func TestConnectWithRetry_TimeoutAfterRetries(t *testing.T) {
	t.Parallel()

	refused := errors.New("connection refused")
	attempts := 0
	opener := func(dsn string) (*gorm.DB, error) {
		attempts++
		return nil, refused
	}

	_, err := ConnectWithRetry("test-dsn", 100*time.Millisecond, opener)

	assert.ErrorIs(t, err, refused)
	assert.GreaterOrEqual(t, attempts, 1)
}

// TestOpen_SQLiteMigrates はインメモリSQLiteに接続しカードテーブルが作成されることを検証します。
func TestOpen_SQLiteMigrates(t *testing.T) {
	t.Parallel()

	db, err := Open(Config{Driver: DriverSQLite, DSN: ":memory:", Migrate: true, ConnectTimeout: time.Second})
	require.NoError(t, err)

	assert.True(t, db.Migrator().HasTable("cards"))
}

// TestOpen_UnknownDriver はサポート外のドライバーで接続を試みないことを検証します。
func TestOpen_UnknownDriver(t *testing.T) {
	t.Parallel()

	_, err := Open(Config{Driver: "oracle"})
	assert.ErrorIs(t, err, ErrUnknownDriver)
}
