package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshdurbin/hashlink/internal/domain"
)

func TestNormalize_Canonical(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare domain gets https", "example.com", "https://example.com"},
		{"explicit https", "https://example.com", "https://example.com"},
		{"root slash stripped", "https://example.com/", "https://example.com"},
		{"surrounding whitespace", "  https://example.com/ \n", "https://example.com"},
		{"http kept", "http://example.com", "http://example.com"},
		{"scheme and host lowercased", "HTTPS://Example.COM/", "https://example.com"},
		{"path kept", "https://example.com/a/b", "https://example.com/a/b"},
		{"trailing path slash kept", "https://example.com/a/", "https://example.com/a/"},
		{"query kept", "https://example.com/?q=1", "https://example.com/?q=1"},
		{"query without path", "https://example.com?q=1", "https://example.com?q=1"},
		{"fragment kept", "https://example.com/#top", "https://example.com/#top"},
		{"port kept, root stripped", "https://example.com:8443/", "https://example.com:8443"},
		{"default https port dropped", "https://example.com:443", "https://example.com"},
		{"default http port dropped", "http://example.com:80/", "http://example.com"},
		{"https port kept on http", "http://example.com:443", "http://example.com:443"},
		{"empty port dropped", "https://example.com:/a", "https://example.com/a"},
		{"parent segment resolved", "https://example.com/a/../b", "https://example.com/b"},
		{"current segment resolved", "https://example.com/a/./b/", "https://example.com/a/b/"},
		{"trailing dot segment keeps slash", "https://example.com/a/b/..", "https://example.com/a/"},
		{"dot segments above root", "https://example.com/../../a", "https://example.com/a"},
		{"dot segments with query", "https://example.com/a/../?q=1", "https://example.com/?q=1"},
		{"unicode host to punycode", "https://münchen.de", "https://xn--mnchen-3ya.de"},
		{"unicode host uppercased", "MÜNCHEN.de/karte", "https://xn--mnchen-3ya.de/karte"},
		{"subdomain and second level tld", "shop.example.co.uk/cart", "https://shop.example.co.uk/cart"},
		{"hyphenated label", "my-site.example.org", "https://my-site.example.org"},
		{"nested url in query", "example.com/go?to=http://other.com", "https://example.com/go?to=http://other.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_EquivalentInputs(t *testing.T) {
	inputs := []string{
		"example.com",
		"https://example.com",
		"https://example.com/",
		"https://example.com:443/",
		"https://example.com/a/..",
	}

	var results []string
	for _, in := range inputs {
		got, err := Normalize(in)
		require.NoError(t, err)
		results = append(results, got)
	}

	for _, got := range results {
		assert.Equal(t, "https://example.com", got)
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	first, err := Normalize("Example.com/Path?x=1")
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := Normalize("Example.com/Path?x=1")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}

	for _, in := range []string{"Example.com/Path?x=1", "https://münchen.de/a/./b", "http://example.com:80/x/../y/"} {
		once, err := Normalize(in)
		require.NoError(t, err)
		twice, err := Normalize(once)
		require.NoError(t, err)
		assert.Equal(t, once, twice, "normalizing a canonical URL must be a no-op")
	}
}

func TestNormalize_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantReason string
	}{
		{"empty", "", "URL cannot be empty"},
		{"whitespace only", "   \t ", "URL cannot be empty"},
		{"too long", strings.Repeat("a", 3000), "URL too long (max 2048 characters)"},
		{"localhost", "https://localhost", "Invalid domain format"},
		{"localhost with port", "http://localhost:3000/x", "Invalid domain format"},
		{"ipv4", "https://127.0.0.1", "Invalid domain format"},
		{"ipv4 with port", "192.168.1.1:8080", "Invalid domain format"},
		{"ipv6", "http://[::1]/", "Invalid domain format"},
		{"empty host", "https://", "Invalid domain format"},
		{"userinfo only", "https://user:pass@", "Invalid domain format"},
		{"single letter tld", "https://example.c", "Invalid domain format"},
		{"numeric tld", "https://example.123", "Invalid domain format"},
		{"space in host", "https://exa mple.com", "Failed to normalize URL"},
		{"bad escape", "https://example.com/%zz", "Failed to normalize URL"},
		{"underscore in host", "https://exa_mple.com", "Invalid domain format"},
		{"unicode single label", "https://münchen", "Invalid domain format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			require.Error(t, err)
			assert.Empty(t, got)

			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Reason, tt.wantReason)
		})
	}
}

func TestNormalize_LengthBoundary(t *testing.T) {
	prefix := "https://example.com/"
	exact := prefix + strings.Repeat("a", MaxLength-len(prefix))
	require.Len(t, exact, MaxLength)

	got, err := Normalize(exact)
	require.NoError(t, err)
	assert.Equal(t, exact, got)

	_, err = Normalize(exact + "a")
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestValidDomain(t *testing.T) {
	valid := []string{"example.com", "a.io", "sub.example.co.uk", "x-y.example.dev", "EXAMPLE.COM"}
	invalid := []string{"", "localhost", "example", "127.0.0.1", "example.c", "exa_mple.com", "example.com."}

	for _, host := range valid {
		assert.True(t, ValidDomain(host), host)
	}
	for _, host := range invalid {
		assert.False(t, ValidDomain(host), host)
	}
}
