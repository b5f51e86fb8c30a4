package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	orig := Version
	t.Cleanup(func() { Version = orig })

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "", want: "0.0.1-dev"},
		{in: "v1.2.3", want: "1.2.3"},
		{in: "1.2.3-dirty", want: "1.2.3-dirty"},
		{in: "nightly", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			Version = tt.in
			got, err := Get()
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.in, MustGet())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse(t *testing.T) {
	major, minor, patch := Parse("2.10.4-rc1")
	assert.Equal(t, []int{2, 10, 4}, []int{major, minor, patch})

	major, minor, patch = Parse("3")
	assert.Equal(t, []int{3, 0, 0}, []int{major, minor, patch})
}
