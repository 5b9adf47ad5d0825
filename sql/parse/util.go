package parse

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"unicode"

	errors "gopkg.in/src-d/go-errors.v1"
)

var errUnexpectedSyntax = errors.NewKind("expecting %q but got %q instead")

type parseFunc func(*bufio.Reader) error

func expectRune(expected rune) parseFunc {
	return func(rd *bufio.Reader) error {
		r, _, err := rd.ReadRune()
		if err != nil {
			return err
		}

		if r != expected {
			return errUnexpectedSyntax.New(expected, string(r))
		}

		return nil
	}
}

func expect(expected string) parseFunc {
	return func(r *bufio.Reader) error {
		var ident string

		if err := readIdent(&ident)(r); err != nil {
			return err
		}

		if ident == expected {
			return nil
		}

		return errUnexpectedSyntax.New(expected, ident)
	}
}

func skipSpaces(r *bufio.Reader) error {
	for {
		ru, _, err := r.ReadRune()
		if err == io.EOF {
			return nil
		}

		if err != nil {
			return err
		}

		if !unicode.IsSpace(ru) {
			return r.UnreadRune()
		}
	}
}

func readLetter(r *bufio.Reader, buf *bytes.Buffer) error {
	ru, _, err := r.ReadRune()
	if err != nil {
		if err == io.EOF {
			return nil
		}

		return err
	}

	buf.WriteRune(ru)
	return nil
}

func readValidIdentRune(r *bufio.Reader, buf *bytes.Buffer) error {
	ru, _, err := r.ReadRune()
	if err != nil {
		return err
	}

	if !unicode.IsLetter(ru) && !unicode.IsDigit(ru) && ru != '_' {
		if err := r.UnreadRune(); err != nil {
			return err
		}
		return io.EOF
	}

	buf.WriteRune(ru)
	return nil
}

func readIdent(ident *string) parseFunc {
	return func(r *bufio.Reader) error {
		var buf bytes.Buffer
		if err := readLetter(r, &buf); err != nil {
			return err
		}

		for {
			if err := readValidIdentRune(r, &buf); err == io.EOF {
				break
			} else if err != nil {
				return err
			}
		}

		*ident = strings.ToLower(buf.String())
		return nil
	}
}

// readQuoted reads a string literal delimited by single or double quotes
// and leaves the unquoted content in val.
func readQuoted(val *string) parseFunc {
	return func(rd *bufio.Reader) error {
		quote, _, err := rd.ReadRune()
		if err != nil {
			return err
		}

		if quote != '\'' && quote != '"' {
			return errUnexpectedSyntax.New("quoted string", string(quote))
		}

		var buf bytes.Buffer
		for {
			ru, _, err := rd.ReadRune()
			if err == io.EOF {
				return errUnexpectedSyntax.New(quote, "EOF")
			}

			if err != nil {
				return err
			}

			if ru == quote {
				break
			}

			buf.WriteRune(ru)
		}

		*val = buf.String()
		return nil
	}
}
