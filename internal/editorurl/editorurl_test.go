package editorurl

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	u, err := Build(8000, "/Users/x/My Font.ufo", `"Hello"`)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/editor/-/Users/x/My%20Font.ufo?text=%22Hello%22", u)
}

func TestBuildWithoutSampleText(t *testing.T) {
	u, err := Build(8001, "/fonts/A.fontra", "")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8001/editor/-/fonts/A.fontra", u)
}

func TestSampleTextSpacesAreNotPlus(t *testing.T) {
	u, err := Build(8000, "/f.ufo", "a b")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(u, "?text=a%20b"), u)
}

func TestRoundTrip(t *testing.T) {
	for _, path := range []string{
		"/Users/x/My Font.ufo",
		"/tmp/what?#%/weird name.designspace",
		"/a/b+c/d&e=f.fontra",
		"/Ünïcode/Fönt.rcjk",
	} {
		p, err := Path(path)
		require.NoError(t, err, path)

		// segments are encoded individually
		assert.Equal(t, strings.Count(path, "/"), strings.Count(p, "/")-2, p)

		back, err := ProjectPath(p)
		require.NoError(t, err)
		assert.Equal(t, path, back)
	}
}

func TestEncodedPathIsAValidURLPath(t *testing.T) {
	p, err := Path("/tmp/what?#%/x.ufo")
	require.NoError(t, err)

	u, err := url.Parse("http://localhost:8000" + p)
	require.NoError(t, err)
	assert.Empty(t, u.RawQuery)
	assert.Empty(t, u.Fragment)
}

func TestDriveLetterIsOmitted(t *testing.T) {
	p, err := Path(`C:\Users\x\My Font.ufo`)
	require.NoError(t, err)
	assert.Equal(t, "/editor/-/Users/x/My%20Font.ufo", p)
}

func TestDecomposedInputIsNormalized(t *testing.T) {
	decomposed := "/fonts/Fo\u0308nt.ufo"
	p, err := Path(decomposed)
	require.NoError(t, err)

	back, err := ProjectPath(p)
	require.NoError(t, err)
	assert.Equal(t, "/fonts/F\u00f6nt.ufo", back)
}

func TestRelativePathRejected(t *testing.T) {
	_, err := Build(8000, "fonts/My Font.ufo", "")
	assert.Error(t, err)

	_, err = Path("/")
	assert.Error(t, err)
}

func TestProjectPathRejectsForeignRoutes(t *testing.T) {
	_, err := ProjectPath("/api/project")
	assert.Error(t, err)

	_, err = ProjectPath(Prefix)
	assert.Error(t, err)

	_, err = ProjectPath(Prefix + "bad%zz")
	assert.Error(t, err)
}
