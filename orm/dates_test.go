package orm_test

import (
	"testing"
	"time"

	"github.com/shaurya/recordkit/config"
	"github.com/shaurya/recordkit/orm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayout(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"yyyy-MM-dd HH:mm:ss", "2006-01-02 15:04:05"},
		{"dd.MM.yyyy HH:mm:ss", "02.01.2006 15:04:05"},
		{"EEE, d MMM yy", "Mon, 2 Jan 06"},
		{"EEEE, MMMM d", "Monday, January 2"},
		{"h:mm a", "3:04 PM"},
		{"HH:mm:ss.SSS", "15:04:05.000"},
		{"'at' HH", "at 15"},
		{"''yy", "'06"},
		{"yyyy-MM-dd'T'HH:mm:ssXXX", "2006-01-02T15:04:05Z07:00"},
		{"y", "2006"},
		{"'o''clock' H", "o'clock 15"},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			layout, err := orm.Layout(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, layout)
		})
	}
}

func TestLayoutRejectsClashingLiterals(t *testing.T) {
	for _, pattern := range []string{"dd.MM.yyyy 'Jan' HH", "HH 'PM'", "yyyy 'Mon'", "HH:mm 1"} {
		_, err := orm.Layout(pattern)
		assert.ErrorIs(t, err, orm.ErrLayoutLiteral, pattern)
	}
}

func TestDateConverterQuotedLiterals(t *testing.T) {
	tests := []struct {
		display string
		want    string
	}{
		{"dd.MM.yyyy 'Jan' HH:mm", "15.03.2024 Jan 10:20"},
		{"'PM' h:mm a", "PM 10:20 AM"},
		{"EEEE 'at' HH:mm", "Friday at 10:20"},
		{"'Day' d 'of' MMMM yyyy, '2nd' 'Mon'", "Day 15 of March 2024, 2nd Mon"},
		{"'o''clock' HH", "o'clock 10"},
	}
	for _, tt := range tests {
		t.Run(tt.display, func(t *testing.T) {
			c := orm.NewDateConverter()
			c.SaveFormat = "yyyy-MM-dd HH:mm"
			c.DisplayFormat = tt.display

			display, err := c.ToDisplay("2024-03-15 10:20")
			require.NoError(t, err)
			assert.Equal(t, tt.want, display)
		})
	}
}

func TestDateConverterParsesQuotedLiterals(t *testing.T) {
	c := orm.NewDateConverter()
	c.DisplayFormat = "dd.MM.yyyy 'Jan' HH:mm:ss"

	saved, err := c.ToSave("15.03.2024 Jan 10:20:30")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15 10:20:30", saved)

	_, err = c.ToSave("15.03.2024 Feb 10:20:30")
	var parseErr *time.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "15.03.2024 Feb 10:20:30", parseErr.Value)

	c.DisplayFormat = "EEEE 'at' dd.MM.yyyy HH:mm:ss"
	saved, err = c.ToSave("Saturday at 16.03.2024 10:20:30")
	require.NoError(t, err, "the 'at' inside Saturday is skipped")
	assert.Equal(t, "2024-03-16 10:20:30", saved)

	ts, err := c.ToTimestamp(c.FromTimestamp(86400))
	require.NoError(t, err)
	assert.Equal(t, int64(86400), ts)
}

func TestDateConverterRoundTrip(t *testing.T) {
	c := orm.NewDateConverter()

	display, err := c.ToDisplay("2024-03-15 10:20:30")
	require.NoError(t, err)
	assert.Equal(t, "15.03.2024 10:20:30", display)

	saved, err := c.ToSave(display)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15 10:20:30", saved)
}

func TestDateConverterRejectsMalformedInput(t *testing.T) {
	c := orm.NewDateConverter()

	_, err := c.ToDisplay("15.03.2024 10:20:30")
	assert.Error(t, err)
	_, err = c.ToSave("")
	assert.Error(t, err)
	_, err = c.ToTimestamp("yesterday")
	assert.Error(t, err)
}

func TestDateConverterTimestamps(t *testing.T) {
	c := orm.NewDateConverter()
	c.Location = time.FixedZone("UTC+1", 3600)

	ts, err := c.ToTimestamp("01.01.1970 01:00:00")
	require.NoError(t, err)
	assert.Equal(t, int64(0), ts)
	assert.Equal(t, "01.01.1970 01:00:00", c.FromTimestamp(0))

	assert.Equal(t, "02.01.1970 00:00:00", orm.DateConverter{DisplayFormat: orm.DefaultDateFormatDisplay}.FromTimestamp(86400),
		"a nil location is UTC")
}

func TestNewDateConverterFromConfig(t *testing.T) {
	c, err := orm.NewDateConverterFromConfig(config.RecordConfig{DateFormatDisplay: "MM/dd/yyyy", Timezone: "UTC"})
	require.NoError(t, err)
	assert.Equal(t, orm.DefaultDateFormatSave, c.SaveFormat)
	assert.Equal(t, "MM/dd/yyyy", c.DisplayFormat)
	assert.Equal(t, time.UTC, c.Location)

	_, err = orm.NewDateConverterFromConfig(config.RecordConfig{Timezone: "Nowhere/Atlantis"})
	assert.Error(t, err)
}

func TestRecordDates(t *testing.T) {
	w := &Widget{}

	display, err := w.ConvertDateToDisplay("2024-03-15 10:20:30")
	require.NoError(t, err)
	assert.Equal(t, "15.03.2024 10:20:30", display)

	w.UseDates(orm.DateConverter{SaveFormat: "yyyy-MM-dd", DisplayFormat: "dd/MM/yyyy"})

	display, err = w.ConvertDateToDisplay("2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, "15/03/2024", display)

	saved, err := w.ConvertDateToSave("15/03/2024")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", saved)

	ts, err := w.ConvertDateToTimestamp("02/01/1970")
	require.NoError(t, err)
	assert.Equal(t, int64(86400), ts)
}

func TestConvertDateFromTimestamp(t *testing.T) {
	w := &Widget{}

	out, err := orm.ConvertDateFromTimestamp(w, 86400, "n/a")
	require.NoError(t, err)
	assert.Equal(t, "n/a", out, "datetime unset")

	w.Datetime = true
	out, err = orm.ConvertDateFromTimestamp(w, 86400, "n/a")
	require.NoError(t, err)
	assert.Equal(t, "02.01.1970 00:00:00", out)

	out, err = orm.ConvertDateFromTimestamp(w, "86400", "n/a")
	require.NoError(t, err)
	assert.Equal(t, "02.01.1970 00:00:00", out)

	_, err = orm.ConvertDateFromTimestamp(w, "soon", "n/a")
	assert.Error(t, err)

	out, err = orm.ConvertDateFromTimestamp(&Author{}, 86400, "n/a")
	require.NoError(t, err)
	assert.Equal(t, "n/a", out, "no datetime column")
}
