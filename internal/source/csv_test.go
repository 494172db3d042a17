package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/salesflow/internal/common"
)

const sampleCSV = `message_id,message_timestamp,sales_date_claimed,raw_text,rep_id,rep_name,store,region
m1,2024-01-10 18:30:00,2024-01-10,"units=7, R27,401",R001,Thabo,Store A,Gauteng
m2,not a time,someday,u 3,,Lerato,Store B,Western Cape

m3,2024-01-11 08:00:00,2024-01-10,,R003,Sipho,Store C,Gauteng
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestCSVSource_Read(t *testing.T) {
	src := NewCSVSource(writeFile(t, "raw.csv", sampleCSV), nil)
	require.True(t, src.Exists())

	subs, err := src.Read(context.Background())
	require.NoError(t, err)
	require.Len(t, subs, 3, "blank lines are skipped")

	assert.Equal(t, "m1", subs[0].MessageID)
	assert.Equal(t, "units=7, R27,401", subs[0].RawText)
	assert.Equal(t, "R001", subs[0].RepID)
	assert.Equal(t, "Gauteng", subs[0].Region)
	require.NotNil(t, subs[0].MessageTimestamp)
	assert.Equal(t, time.Date(2024, 1, 10, 18, 30, 0, 0, time.UTC), *subs[0].MessageTimestamp)
	require.NotNil(t, subs[0].SalesDateClaimed)
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), *subs[0].SalesDateClaimed)

	assert.Nil(t, subs[1].MessageTimestamp, "unparsable timestamps become nil")
	assert.Nil(t, subs[1].SalesDateClaimed)
	assert.Empty(t, subs[1].RepID)
	assert.Equal(t, "Lerato", subs[1].RepKey())

	assert.Empty(t, subs[2].RawText)
}

func TestCSVSource_ColumnOrderAndExtras(t *testing.T) {
	content := "\ufeffRegion,store,Rep_Name,rep_id,raw_text,sales_date_claimed,message_timestamp,message_id,notes\n" +
		"Gauteng,Store A,Thabo,R001,units=7,2024-01-10,2024-01-10 18:30:00,m1,ignored\n"

	subs, err := NewCSVSource(writeFile(t, "raw.csv", content), nil).Read(context.Background())
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "m1", subs[0].MessageID)
	assert.Equal(t, "Gauteng", subs[0].Region)
	assert.Equal(t, "units=7", subs[0].RawText)
}

func TestCSVSource_ShortRows(t *testing.T) {
	content := strings.Join(Columns, ",") + "\nm1,2024-01-10 18:30:00,2024-01-10,units=7\n"

	subs, err := NewCSVSource(writeFile(t, "raw.csv", content), nil).Read(context.Background())
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "units=7", subs[0].RawText)
	assert.Empty(t, subs[0].Region)
}

func TestCSVSource_MissingColumns(t *testing.T) {
	content := "message_id,raw_text\nm1,units=7\n"

	_, err := NewCSVSource(writeFile(t, "raw.csv", content), nil).Read(context.Background())
	require.ErrorIs(t, err, common.ErrMissingColumn)
	assert.Contains(t, err.Error(), "message_timestamp")
	assert.Contains(t, err.Error(), "region")
}

func TestCSVSource_EmptyFile(t *testing.T) {
	_, err := NewCSVSource(writeFile(t, "raw.csv", ""), nil).Read(context.Background())
	assert.ErrorIs(t, err, errMissingHeader)
}

func TestCSVSource_Missing(t *testing.T) {
	dir := t.TempDir()
	src := NewCSVSource(filepath.Join(dir, "absent.csv"), nil)

	assert.False(t, src.Exists())
	assert.Equal(t, filepath.Join(dir, "absent.csv"), src.Location())

	assert.False(t, NewCSVSource(dir, nil).Exists(), "a directory is not a source")
}
