package wikipedia

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDisambiguation(t *testing.T) {
	fragment := `<div class="mw-parser-output">
<p><b>Mercury</b> may refer to:</p>
<ul>
  <li class="toclevel-1 tocsection-1"><a href="#Science">Science</a></li>
  <li><a href="/wiki/Mercury_(planet)">Mercury (planet)</a>, the closest planet to the Sun</li>
  <li><span><a href="/wiki/Mercury_(element)"> Mercury (element) </a></span> and <a href="/wiki/Other">Other</a></li>
  <li>No link here</li>
  <li><a href="/wiki/Freddie_Mercury"><i>Freddie</i> Mercury</a></li>
</ul>
</div>`

	options, err := parseDisambiguation(fragment)
	require.NoError(t, err)
	require.Equal(t, []string{"Mercury (planet)", " Mercury (element) ", "Freddie Mercury"}, options)
}

func TestParseDisambiguation_KeepsRawLinkText(t *testing.T) {
	options, err := parseDisambiguation(`<ul><li><a><img src="x.png"></a> Foo</li><li><a> Bar </a></li></ul>`)
	require.NoError(t, err)
	require.Equal(t, []string{"", " Bar "}, options)
}

func TestParseDisambiguation_Empty(t *testing.T) {
	options, err := parseDisambiguation("")
	require.NoError(t, err)
	require.Empty(t, options)
}
