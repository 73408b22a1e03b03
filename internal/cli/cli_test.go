package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/wes-io-live/idgen/internal/generator"
	"github.com/weiawesome/wes-io-live/idgen/pkg/flake"
	pkglog "github.com/weiawesome/wes-io-live/idgen/pkg/log"
	"github.com/weiawesome/wes-io-live/idgen/pkg/ulid"
)

func testBuild(t *testing.T) BuildFunc {
	t.Helper()
	return func(string) (*generator.Registry, error) {
		fg, err := flake.New(flake.WithDatacenterID(2), flake.WithWorkerID(3), flake.WithLogger(pkglog.Nop()))
		if err != nil {
			return nil, err
		}
		ug, err := ulid.NewGenerator(ulid.WithGuard(ulid.NewGuard()))
		if err != nil {
			return nil, err
		}
		reg := generator.NewRegistry()
		reg.Register(generator.TypeSnowflake, generator.NewSnowflakeGenerator(fg))
		reg.Register(generator.TypeULID, generator.NewULIDGenerator(ug))
		return reg, nil
	}
}

func run(t *testing.T, build BuildFunc, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand(build)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTypes(t *testing.T) {
	out, err := run(t, testBuild(t), "types")
	require.NoError(t, err)
	assert.Equal(t, "snowflake\nulid\n", out)
}

func TestGen(t *testing.T) {
	out, err := run(t, testBuild(t), "gen", "snowflake", "-n", "5")
	require.NoError(t, err)

	lines := strings.Fields(out)
	require.Len(t, lines, 5)
	prev := int64(0)
	for _, s := range lines {
		id, err := flake.ParseString(s)
		require.NoError(t, err)
		assert.Equal(t, int64(2), id.DatacenterID())
		assert.Equal(t, int64(3), id.WorkerID())
		assert.Greater(t, id.Int64(), prev)
		prev = id.Int64()
	}

	_, err = run(t, testBuild(t), "gen", "snowflake", "--count", "0")
	assert.Error(t, err)

	_, err = run(t, testBuild(t), "gen", "bogus")
	assert.ErrorIs(t, err, generator.ErrUnknownType)
}

func TestValidate(t *testing.T) {
	out, err := run(t, testBuild(t), "validate", "ulid", "01ARZ3NDEKTSV4RRFFQ69G5FAV")
	require.NoError(t, err)
	assert.Equal(t, "valid\n", out)

	_, err = run(t, testBuild(t), "validate", "ulid", "not-a-ulid")
	assert.Error(t, err)
}

func TestParse(t *testing.T) {
	out, err := run(t, testBuild(t), "parse", "ulid", "01ARZ3NDEKTSV4RRFFQ69G5FAV")
	require.NoError(t, err)

	var result generator.ParseResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, int64(1469922850259), result.TimestampMs)

	_, err = run(t, testBuild(t), "parse", "ulid", "???")
	assert.Error(t, err)
}

func TestBuildFailure(t *testing.T) {
	boom := errors.New("boom")
	_, err := run(t, func(string) (*generator.Registry, error) { return nil, boom }, "types")
	assert.ErrorIs(t, err, boom)
}

func TestArgs(t *testing.T) {
	_, err := run(t, testBuild(t), "parse", "ulid")
	assert.Error(t, err)
}
