package datamodel

import (
	"fmt"

	"github.com/diwise/wikibase-datamodel/pkg/wikibase/errors"
)

// StatementRank orders statements about the same subject and property. The zero value is
// not a rank and is rejected wherever a rank is required.
type StatementRank int

const (
	RankDeprecated StatementRank = iota + 1
	RankNormal
	RankPreferred
)

func (r StatementRank) String() string {
	switch r {
	case RankDeprecated:
		return "deprecated"
	case RankNormal:
		return "normal"
	case RankPreferred:
		return "preferred"
	default:
		return fmt.Sprintf("StatementRank(%d)", int(r))
	}
}

func (r StatementRank) valid() bool {
	return r >= RankDeprecated && r <= RankPreferred
}

// ParseStatementRank reads the rank names used in the wire format
func ParseStatementRank(s string) (StatementRank, error) {
	switch s {
	case "deprecated":
		return RankDeprecated, nil
	case "normal":
		return RankNormal, nil
	case "preferred":
		return RankPreferred, nil
	case "":
		return 0, errors.NewNullNotAllowedError("rank")
	default:
		return 0, errors.NewInvalidArgumentError(fmt.Sprintf("unknown statement rank \"%s\"", s))
	}
}

func checkRank(rank StatementRank) error {
	if rank == 0 {
		return errors.NewNullNotAllowedError("statement rank")
	}
	if !rank.valid() {
		return errors.NewInvalidArgumentError(fmt.Sprintf("%s is not a valid rank", rank))
	}
	return nil
}
