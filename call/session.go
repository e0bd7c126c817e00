package call

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cordialsys/xcall/chain/substrate/builder"
	"github.com/cordialsys/xcall/chain/substrate/client"
	"github.com/cordialsys/xcall/chain/substrate/registry"
	"github.com/cordialsys/xcall/chain/substrate/resolver"
	"github.com/cordialsys/xcall/chain/substrate/selector"
	"github.com/cordialsys/xcall/chain/substrate/signer"
	"github.com/cordialsys/xcall/chain/substrate/value"
	xcerrors "github.com/cordialsys/xcall/client/errors"
	"github.com/cordialsys/xcall/config"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Chain is a live connection to a node
type Chain interface {
	URL() string
	FetchMetadata(ctx context.Context) (*registry.Registry, error)
	SignAndSubmit(ctx context.Context, reg *registry.Registry, call *builder.Call, s *signer.Signer, tip uint64) (*client.Receipt, error)
	QueryStorage(ctx context.Context, query *builder.StorageQuery) ([]byte, error)
	Close()
}

var _ Chain = &client.Client{}

type Connector func(ctx context.Context, url string) (Chain, error)

// Connect opens a connection to a substrate node
func Connect(ctx context.Context, url string) (Chain, error) {
	cli, err := client.NewClient(ctx, url)
	if err != nil {
		return nil, err
	}
	return cli, nil
}

// Keyring derives the signer of a secret uri
type Keyring func(suri string) (*signer.Signer, error)

func NewKeyring(prefix uint16) Keyring {
	return func(suri string) (*signer.Signer, error) {
		return signer.New(suri, prefix)
	}
}

// Output shows the progress of a session to the operator
type Output interface {
	Intro(title string)
	Info(message string)
	Outro(message string)
	OutroCancel(message string)
}

// Request holds what was supplied up front. Anything left empty is asked for.
type Request struct {
	Pallet    string
	Extrinsic string
	Storage   string
	// one fragment per top-level argument, in declared order
	Args []string
	URL  string
	Suri string
	Tip  uint64
	// submit without asking for confirmation
	SkipConfirm bool
}

// Controller runs call sessions: select, resolve, build, confirm, sign and submit.
// A controller runs one session at a time.
type Controller struct {
	source  resolver.Source
	output  Output
	connect Connector
	keyring Keyring

	ToolName string
	// bounds each network step, zero for no bound
	Timeout time.Duration

	state   State
	history []State
	log     *logrus.Entry
}

func NewController(source resolver.Source, output Output, connect Connector, keyring Keyring) *Controller {
	return &Controller{
		source:   source,
		output:   output,
		connect:  connect,
		keyring:  keyring,
		ToolName: config.DefaultToolName,
		Timeout:  config.DefaultTimeout,
		log:      logrus.NewEntry(logrus.StandardLogger()),
	}
}

func (c *Controller) State() State {
	return c.state
}

// History lists the states of the last session in the order they were entered.
func (c *Controller) History() []State {
	return append([]State{}, c.history...)
}

func (c *Controller) transition(next State) {
	c.log.WithFields(logrus.Fields{
		"from": c.state,
		"to":   next,
	}).Debug("transition")
	c.state = next
	c.history = append(c.history, next)
}

// fragmentSource serves the pre-supplied fragments before asking the operator
type fragmentSource struct {
	resolver.Source
	fragments *resolver.Fragments
}

func (s *fragmentSource) NextPositional() (string, bool) {
	if fragment, ok := s.fragments.NextPositional(); ok {
		return fragment, true
	}
	return s.Source.NextPositional()
}

// session is what is kept across the calls of one session
type session struct {
	source   *fragmentSource
	chain    Chain
	registry *registry.Registry
	builder  *builder.CallBuilder
	url      string
	suri     string
	signer   *signer.Signer
	tip      uint64
}

// RunCallSession runs calls against one chain until the operator is done.
// Another call is offered only when the operation was not supplied up front.
func (c *Controller) RunCallSession(ctx context.Context, req Request) *Result {
	id := uuid.NewString()
	c.log = logrus.WithField("session", id)
	c.state = Idle
	c.history = []State{Idle}
	result := &Result{Session: id}

	s := &session{
		source: &fragmentSource{Source: c.source, fragments: resolver.NewFragments(req.Args...)},
		url:    strings.TrimSpace(req.URL),
		suri:   strings.TrimSpace(req.Suri),
		tip:    req.Tip,
	}
	repeatable := req.Extrinsic == "" && req.Storage == ""

	c.output.Intro("Call a parachain")
	if err := c.open(ctx, s); err != nil {
		return c.fail(result, err)
	}
	defer s.chain.Close()

	next := selector.Request{Pallet: req.Pallet, Extrinsic: req.Extrinsic, Storage: req.Storage}
	for {
		c.transition(Configuring)
		receipt, err := c.runCall(ctx, s, next, req.SkipConfirm)
		if err != nil {
			return c.fail(result, err)
		}
		result.Receipts = append(result.Receipts, receipt)

		if !repeatable {
			return c.done(result, "Call completed successfully!")
		}
		c.transition(RepeatPrompt)
		again, err := s.source.Confirm("Do you want to perform another call to the same chain?", false)
		if err != nil {
			c.log.WithError(err).Debug("not repeating")
		}
		if err != nil || !again {
			return c.done(result, "Parachain calling complete.")
		}
		// the connection and the signer are kept
		next = selector.Request{}
	}
}

func (c *Controller) done(result *Result, message string) *Result {
	c.transition(Done)
	c.output.Outro(message)
	result.Kind = ResultSubmitted
	return result
}

func (c *Controller) fail(result *Result, err error) *Result {
	if xcerrors.Is(err, xcerrors.Canceled) {
		reason := err.Error()
		var xcErr *xcerrors.Error
		if errors.As(err, &xcErr) && xcErr.Cause == nil {
			reason = xcErr.Message
		}
		c.transition(Canceled)
		c.output.OutroCancel(reason)
		result.Kind = ResultCanceled
		result.Reason = reason
		return result
	}
	c.log.WithError(err).Debug("call failed")
	c.output.OutroCancel(err.Error())
	result.Kind = ResultFailed
	result.ErrorKind = xcerrors.StatusOf(err)
	result.Message = err.Error()
	return result
}

func (c *Controller) networkContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.Timeout > 0 {
		return context.WithTimeout(ctx, c.Timeout)
	}
	return context.WithCancel(ctx)
}

// open asks for the chain when none other than the default was given, connects and reads its metadata
func (c *Controller) open(ctx context.Context, s *session) error {
	if s.url == "" || s.url == config.DefaultURL {
		url, err := s.source.Input("Which chain would you like to interact with?", config.SuggestedURL, config.SuggestedURL)
		switch {
		case errors.Is(err, resolver.ErrNonInteractive):
			if s.url == "" {
				s.url = config.DefaultURL
			}
		case err != nil:
			return err
		default:
			s.url = strings.TrimSpace(url)
		}
	}
	c.log = c.log.WithField("url", s.url)

	netCtx, cancel := c.networkContext(ctx)
	defer cancel()
	chain, err := c.connect(netCtx, s.url)
	if err != nil {
		if xcerrors.StatusOf(err) == xcerrors.UnknownError {
			err = xcerrors.Connectionf(err, "could not connect to %s", s.url)
		}
		return err
	}
	reg, err := chain.FetchMetadata(netCtx)
	if err != nil {
		chain.Close()
		if xcerrors.StatusOf(err) == xcerrors.UnknownError {
			err = xcerrors.MetadataFetchf(err, "unable to fetch the chain metadata")
		}
		return err
	}
	s.chain = chain
	s.registry = reg
	s.builder = builder.NewCallBuilder(reg)
	c.log.WithField("pallets", len(reg.Pallets())).Info("connected")
	return nil
}

func (c *Controller) runCall(ctx context.Context, s *session, req selector.Request, skipConfirm bool) (*Receipt, error) {
	selection, err := selector.New(s.registry, s.source).Select(req)
	if err != nil {
		return nil, err
	}
	args, err := resolver.New(s.source).ResolveAll(selection.Args())
	if err != nil {
		return nil, err
	}
	// surplus fragments are kept so that the arity check sees them
	args = append(args, s.source.fragments.Rest()...)

	command := &Command{
		Tool:   c.ToolName,
		Pallet: selection.Pallet.Name,
		Args:   args,
		URL:    s.url,
	}
	if selection.IsQuery() {
		command.Storage = selection.Name()
		c.output.Info(command.String())
		return c.query(ctx, s, selection, args)
	}
	command.Extrinsic = selection.Name()
	command.Suri = s.suri
	c.output.Info(command.String())
	return c.submit(ctx, s, selection, command, skipConfirm)
}

func (c *Controller) submit(ctx context.Context, s *session, selection *selector.Selection, command *Command, skipConfirm bool) (*Receipt, error) {
	call, err := s.builder.Build(selection.Pallet.Name, selection.Extrinsic.Name, command.Args)
	if err != nil {
		return nil, err
	}
	c.transition(Prepared)
	c.output.Info(fmt.Sprintf("Encoded call data: %s", call.CallData()))

	if s.signer == nil {
		if err := c.resolveSigner(s); err != nil {
			return nil, err
		}
	}
	command.Suri = s.suri
	c.output.Info(command.String())

	c.transition(AwaitingConfirmation)
	if !skipConfirm {
		ok, err := s.source.Confirm("Do you want to submit the call?", true)
		if errors.Is(err, resolver.ErrNonInteractive) {
			return nil, xcerrors.Canceledf("extrinsic %s was not submitted, confirmation is required", call.Extrinsic)
		}
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, xcerrors.Canceledf("Extrinsic %s was not submitted. Operation canceled by the user.", call.Extrinsic)
		}
	}

	c.transition(Signing)
	netCtx, cancel := c.networkContext(ctx)
	defer cancel()
	submitted, err := s.chain.SignAndSubmit(netCtx, s.registry, call, s.signer, s.tip)
	if err != nil {
		if xcerrors.StatusOf(err) == xcerrors.UnknownError {
			err = xcerrors.Submissionf(err, "could not submit %s", call)
		}
		return nil, err
	}
	c.transition(Submitted)
	c.output.Info(fmt.Sprintf("Extrinsic submitted with hash: %s", submitted.Hash))
	return &Receipt{
		Pallet:    call.Pallet,
		Operation: call.Extrinsic,
		Call:      submitted.Call,
		CallData:  submitted.CallData,
		Hash:      submitted.Hash,
		Signer:    s.signer.Address,
	}, nil
}

// resolveSigner asks for the signer when none was given. It is kept for the rest of the session.
func (c *Controller) resolveSigner(s *session) error {
	if s.suri == "" {
		suri, err := s.source.Input("Who is going to sign the extrinsic:", config.DefaultSuri, config.DefaultSuri)
		switch {
		case errors.Is(err, resolver.ErrNonInteractive):
			suri = config.DefaultSuri
		case err != nil:
			return err
		}
		s.suri = strings.TrimSpace(suri)
		if s.suri == "" {
			s.suri = config.DefaultSuri
		}
	}
	derived, err := c.keyring(s.suri)
	if err != nil {
		return xcerrors.Submissionf(err, "invalid signer")
	}
	s.signer = derived
	c.log = c.log.WithField("signer", derived.Address)
	return nil
}

func (c *Controller) query(ctx context.Context, s *session, selection *selector.Selection, keys []string) (*Receipt, error) {
	query, err := s.builder.BuildStorageQuery(selection.Pallet.Name, selection.Storage.Name, keys)
	if err != nil {
		return nil, err
	}
	c.transition(Prepared)
	c.output.Info(fmt.Sprintf("Storage key: %s", query.Key.Hex()))

	netCtx, cancel := c.networkContext(ctx)
	defer cancel()
	raw, err := s.chain.QueryStorage(netCtx, query)
	if err != nil {
		if xcerrors.StatusOf(err) == xcerrors.UnknownError {
			err = xcerrors.Submissionf(err, "could not read %s", query)
		}
		return nil, err
	}
	decoded, err := value.NewDecoder(s.registry.Lookup()).Decode(query.ValueType, raw)
	if err != nil {
		return nil, xcerrors.Encodingf(err, "could not decode the value of %s", query)
	}
	c.transition(Submitted)
	c.output.Info(fmt.Sprintf("Storage value: %s", decoded))
	return &Receipt{
		Pallet:    query.Pallet,
		Operation: query.Entry,
		Call:      query.String(),
		Query:     true,
		Value:     decoded,
	}, nil
}
