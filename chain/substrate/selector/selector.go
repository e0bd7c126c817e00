package selector

import (
	"strings"

	"github.com/cordialsys/xcall/chain/substrate/registry"
	"github.com/cordialsys/xcall/chain/substrate/resolver"
	xcerrors "github.com/cordialsys/xcall/client/errors"
)

// Selection is the resolved target of a call, either an extrinsic or a storage entry of a pallet.
type Selection struct {
	Pallet    *registry.Pallet
	Extrinsic *registry.Extrinsic
	Storage   *registry.StorageEntry
}

// IsQuery reports whether the selection reads storage rather than submits an extrinsic.
func (s *Selection) IsQuery() bool {
	return s.Storage != nil
}

// Name of the selected operation.
func (s *Selection) Name() string {
	if s.Storage != nil {
		return s.Storage.Name
	}
	return s.Extrinsic.Name
}

// Args of the selected operation, the keys for a storage entry.
func (s *Selection) Args() []*registry.Arg {
	if s.Storage != nil {
		return s.Storage.Keys
	}
	return s.Extrinsic.Args
}

// Request holds the names that were supplied up front, any of them may be empty.
type Request struct {
	Pallet    string
	Extrinsic string
	Storage   string
}

type Selector struct {
	registry *registry.Registry
	source   resolver.Source
}

func New(reg *registry.Registry, source resolver.Source) *Selector {
	return &Selector{registry: reg, source: source}
}

const (
	extrinsicPrefix = "extrinsic:"
	storagePrefix   = "storage:"
)

// Select resolves the pallet and operation. Supplied names are validated and never prompted for again.
func (s *Selector) Select(req Request) (*Selection, error) {
	var pallet *registry.Pallet
	var err error
	if req.Pallet != "" {
		pallet, err = s.registry.FindPallet(req.Pallet)
	} else {
		pallet, err = s.selectPallet()
	}
	if err != nil {
		return nil, err
	}

	selection := &Selection{Pallet: pallet}
	switch {
	case req.Extrinsic != "":
		selection.Extrinsic, err = pallet.FindExtrinsic(req.Extrinsic)
	case req.Storage != "":
		selection.Storage, err = pallet.FindStorage(req.Storage)
	default:
		err = s.selectOperation(selection)
	}
	if err != nil {
		return nil, err
	}
	return selection, nil
}

func canceled(err error) error {
	if xcerrors.StatusOf(err) != xcerrors.UnknownError {
		return err
	}
	return xcerrors.Wrap(xcerrors.Canceled, err, "selection failed")
}

func (s *Selector) selectPallet() (*registry.Pallet, error) {
	choices := []resolver.Choice{}
	for _, pallet := range s.registry.Pallets() {
		if len(pallet.Extrinsics) == 0 && len(pallet.Storage) == 0 {
			continue
		}
		choices = append(choices, resolver.Choice{Value: pallet.Name, Label: pallet.Name, Hint: pallet.Docs})
	}
	if len(choices) == 0 {
		return nil, xcerrors.UnknownPalletf("the chain exposes no pallets with calls or storage")
	}
	chosen, err := s.source.Select("Select the pallet to call:", choices)
	if err != nil {
		return nil, canceled(err)
	}
	return s.registry.FindPallet(chosen)
}

func (s *Selector) selectOperation(selection *Selection) error {
	pallet := selection.Pallet
	choices := []resolver.Choice{}
	for _, extrinsic := range pallet.Extrinsics {
		choices = append(choices, resolver.Choice{
			Value: extrinsicPrefix + extrinsic.Name,
			Label: extrinsic.Name,
			Hint:  extrinsic.Docs,
		})
	}
	for _, entry := range pallet.Storage {
		choices = append(choices, resolver.Choice{
			Value: storagePrefix + entry.Name,
			Label: entry.Name + " (storage)",
			Hint:  entry.Docs,
		})
	}
	if len(choices) == 0 {
		return xcerrors.UnknownExtrinsicf("pallet %s has no extrinsics or storage", pallet.Name)
	}
	chosen, err := s.source.Select("Select the extrinsic to call:", choices)
	if err != nil {
		return canceled(err)
	}
	var lookupErr error
	switch {
	case strings.HasPrefix(chosen, storagePrefix):
		selection.Storage, lookupErr = pallet.FindStorage(strings.TrimPrefix(chosen, storagePrefix))
	default:
		selection.Extrinsic, lookupErr = pallet.FindExtrinsic(strings.TrimPrefix(chosen, extrinsicPrefix))
	}
	return lookupErr
}
