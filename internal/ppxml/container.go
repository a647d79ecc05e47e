package ppxml

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/badmin-c/pp-portfolio/internal/domain"
	"github.com/badmin-c/pp-portfolio/internal/i18n"
)

const (
	binaryMember    = "data.portfolio"
	binarySignature = "PPPBV"
)

var encodingDecl = regexp.MustCompile(`^\s*<\?xml[^>]*?\sencoding\s*=\s*["']([A-Za-z0-9._:-]+)["']`)

// ParseContainer reads a .portfolio archive with the default language.
func ParseContainer(path string) (domain.Result, domain.Status, error) {
	return NewParser(nil).ParseContainer(path)
}

// ParseContainer unwraps a .portfolio zip archive. The first XML member is parsed;
// the proprietary binary format is recognized and reported, not decoded.
// Only a file that cannot be opened as an archive or read returns an error.
func (ps *Parser) ParseContainer(path string) (domain.Result, domain.Status, error) {
	status := domain.NewStatus()
	status.Source = domain.SourceContainer

	zr, err := zip.OpenReader(path)
	if err != nil {
		status.Fail(ps.p.Sprintf(i18n.ContainerNoArchive, err))
		return domain.EmptyResult(), status, fmt.Errorf("opening container %s: %w", path, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if !strings.HasSuffix(strings.ToLower(f.Name), ".xml") {
			continue
		}
		data, err := readMember(f, -1)
		if err != nil {
			status.Fail(ps.p.Sprintf(i18n.ContainerNoArchive, err))
			return domain.EmptyResult(), status, err
		}
		result, xmlStatus := ps.Parse(bytes.NewReader(cleanMember(data)))
		xmlStatus.Source = domain.SourceContainer
		return result, xmlStatus, nil
	}

	for _, f := range zr.File {
		if f.Name != binaryMember {
			continue
		}
		head, err := readMember(f, len(binarySignature))
		if err != nil {
			status.Fail(ps.p.Sprintf(i18n.ContainerNoArchive, err))
			return domain.EmptyResult(), status, err
		}
		if bytes.Equal(head, []byte(binarySignature)) {
			status.Fail(ps.p.Sprintf(i18n.ContainerBinary))
		} else {
			status.Fail(ps.p.Sprintf(i18n.ContainerUnknown))
		}
		return domain.EmptyResult(), status, nil
	}

	status.Fail(ps.p.Sprintf(i18n.ContainerEmpty))
	return domain.EmptyResult(), status, nil
}

// readMember reads up to limit bytes of an archive member, or all of it when limit < 0.
func readMember(f *zip.File, limit int) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening member %s: %w", f.Name, err)
	}
	defer rc.Close()

	var r io.Reader = rc
	if limit >= 0 {
		r = io.LimitReader(rc, int64(limit))
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading member %s: %w", f.Name, err)
	}
	return data, nil
}

// cleanMember drops invalid UTF-8 from a member that is UTF-8 by declaration or
// default. A member declaring another encoding is left to the charset reader.
func cleanMember(data []byte) []byte {
	if enc := declaredEncoding(data); enc != "" && !strings.EqualFold(enc, "utf-8") && !strings.EqualFold(enc, "utf8") {
		return data
	}
	return bytes.ToValidUTF8(data, nil)
}

// declaredEncoding returns the encoding named in the XML declaration, if any.
func declaredEncoding(data []byte) string {
	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	if end := bytes.Index(data, []byte("?>")); end >= 0 {
		data = data[:end+2]
	}
	m := encodingDecl.FindSubmatch(data)
	if m == nil {
		return ""
	}
	return string(m[1])
}
