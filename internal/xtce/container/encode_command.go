package container

import (
	"fmt"

	"github.com/spacedatanetwork/sdn-server/internal/xtce/bitstream"
	"github.com/spacedatanetwork/sdn-server/internal/xtce/model"
	"github.com/spacedatanetwork/sdn-server/internal/xtce/xerr"
)

// EncodeCommand assembles a byte buffer for the MetaCommand metaCommandName,
// walking its inherited entry list. Inherited argument assignments only
// supply values for arguments the caller omitted; a caller-supplied value
// is not checked against them. values is keyed by plain argument name (Argument.Name), not the
// schema's internally qualified "<MetaCommandQName>/<ArgName>" key, since a
// command caller only ever sees one command's own argument names.
func (e *Engine) EncodeCommand(metaCommandName string, values map[string]interface{}) ([]byte, error) {
	assignments, entries, err := e.idx.FlattenedCommandEntries(metaCommandName)
	if err != nil {
		return nil, xerr.NewSchema(metaCommandName, err)
	}

	qualified, err := e.qualifyArgumentValues(entries, values)
	if err != nil {
		return nil, xerr.NewEncode(metaCommandName, err)
	}
	autoPopulateAssignments(assignments, qualified)
	if err := e.coerceAssignedArguments(entries, qualified); err != nil {
		return nil, xerr.NewEncode(metaCommandName, err)
	}

	w := bitstream.NewWriter()
	if err := e.encodeEntryList(w, entries, qualified, w.PositionBits(), metaCommandName); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// qualifyArgumentValues rekeys a plain-argument-name value map to the
// qualified "<MetaCommandQName>/<ArgName>" keys entries reference, so
// encodeEntryList's EntryArgumentRef lookups resolve.
func (e *Engine) qualifyArgumentValues(entries []model.Entry, values map[string]interface{}) (map[string]interface{}, error) {
	qualified := make(map[string]interface{}, len(values))
	for _, entry := range entries {
		if entry.Kind != model.EntryArgumentRef {
			continue
		}
		arg, ok := e.idx.Argument(entry.ArgumentRef)
		if !ok {
			return nil, fmt.Errorf("dangling argument reference %q", entry.ArgumentRef)
		}
		if v, ok := values[arg.Name]; ok {
			qualified[entry.ArgumentRef] = v
		}
	}
	return qualified, nil
}

// autoPopulateAssignments fills in argument values fixed by command
// inheritance (an ArgumentAssignments equality) when the caller did not
// already supply them, mirroring autoPopulateRestriction for containers.
func autoPopulateAssignments(list model.ComparisonList, qualified map[string]interface{}) {
	for _, c := range list {
		if c.Op != model.OpEQ {
			continue
		}
		if _, ok := qualified[c.ParameterRef]; ok {
			continue
		}
		qualified[c.ParameterRef] = c.Value
	}
}

// coerceAssignedArguments normalizes string-typed auto-populated assignment
// values (ArgumentAssignments carries everything as a string) to the
// numeric form EncodeArgument expects for numeric argument kinds; enum
// labels and boolean strings pass through unchanged.
func (e *Engine) coerceAssignedArguments(entries []model.Entry, qualified map[string]interface{}) error {
	for _, entry := range entries {
		if entry.Kind != model.EntryArgumentRef {
			continue
		}
		s, isString := qualified[entry.ArgumentRef].(string)
		if !isString {
			continue
		}
		arg, ok := e.idx.Argument(entry.ArgumentRef)
		if !ok {
			continue
		}
		at, ok := e.idx.ArgumentType(arg.TypeRef)
		if !ok {
			continue
		}
		switch at.Kind {
		case model.ATInteger, model.ATFloat, model.ATAbsoluteTime:
			var f float64
			if _, err := fmt.Sscanf(s, "%g", &f); err != nil {
				return fmt.Errorf("cannot interpret assigned value %q for argument %q as numeric", s, entry.ArgumentRef)
			}
			qualified[entry.ArgumentRef] = f
		}
	}
	return nil
}
