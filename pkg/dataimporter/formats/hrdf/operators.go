package hrdf

import (
	"io"
	"iter"
	"strconv"

	"github.com/travigo/hrdf/pkg/dataimporter/datasets"
	"github.com/travigo/hrdf/pkg/dataimporter/tokenizer"
)

// DecodeOperators reads one BETRIEB_xx file. Three line forms exist:
//
//	00379 K "SBB" L "SBB" V "Schweizerische Bundesbahnen SBB"
//	00379 : 000011 000085
//	00379 N "ch:1:sboid:100001"
func DecodeOperators(file datasets.FileName, language string, r io.Reader, encoding tokenizer.Encoding) iter.Seq2[Operator, error] {
	return decodeLines(file, r, encoding, lineOptions{}, func(line tokenizer.Line) (Operator, bool, error) {
		tokens, err := tokenizer.SplitQuoted(line.Text, '"')
		if err != nil {
			return Operator{}, false, malformed(file, line.Number, "%s", err)
		}
		if len(tokens) < 2 {
			return Operator{}, false, malformed(file, line.Number, "operator line needs an id and a record code")
		}

		id, err := strconv.Atoi(tokens[0])
		if err != nil {
			return Operator{}, false, malformed(file, line.Number, "operator id %q is not an integer", tokens[0])
		}

		operator := Operator{
			Source:   Source{File: file, Line: line.Number},
			ID:       id,
			Language: language,
		}

		switch tokens[1] {
		case ":":
			operator.Kind = OperatorAdministrations
			operator.Administrations = tokens[2:]
			if len(operator.Administrations) == 0 {
				return Operator{}, false, malformed(file, line.Number, "operator %d lists no administrations", id)
			}
		case "N":
			operator.Kind = OperatorSboid
			if len(tokens) < 3 {
				return Operator{}, false, malformed(file, line.Number, "operator %d has an empty N record", id)
			}
			operator.Sboid = tokens[2]
		case "K", "L", "V":
			operator.Kind = OperatorNames
			for i := 1; i < len(tokens); i += 2 {
				if i+1 >= len(tokens) {
					return Operator{}, false, malformed(file, line.Number, "operator %d name code %s has no value", id, tokens[i])
				}
				value := tokens[i+1]
				switch tokens[i] {
				case "K":
					operator.ShortName = value
				case "L":
					operator.LongName = value
				case "V":
					operator.FullName = value
				default:
					return Operator{}, false, malformed(file, line.Number, "operator %d has unknown name code %q", id, tokens[i])
				}
			}
		default:
			return Operator{}, false, malformed(file, line.Number, "operator %d has unknown record code %q", id, tokens[1])
		}

		return operator, true, nil
	})
}
