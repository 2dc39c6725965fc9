package directive

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"xcmkit/internal/chain"
	chainmocks "xcmkit/internal/chain/mocks"
	"xcmkit/internal/direction"
	"xcmkit/internal/directive/metrics"
	"xcmkit/internal/registry"
	"xcmkit/internal/resolver"
	"xcmkit/internal/xcm"
	dErrors "xcmkit/pkg/domain-errors"
	"xcmkit/pkg/platform/audit"
	auditmocks "xcmkit/pkg/platform/audit/mocks"
	"xcmkit/pkg/platform/sentinel"
)

const (
	alice       = "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"
	ethAccount  = "0x96Bd611EbE3Af39544104e26764F4939924F6Ece"
	ethereumDst = `{"parents":2,"interior":{"X1":[{"GlobalConsensus":{"Ethereum":{"chainId":1}}}]}}`
	wethJSON    = `{"parents":2,"interior":{"X2":[{"GlobalConsensus":{"Ethereum":{"chainId":1}}},{"AccountKey20":{"key":"0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2"}}]}}`
)

type ServiceSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	client   *chainmocks.MockClient
	provider *chainmocks.MockProvider
	auditor  *auditmocks.MockEmitter
	reg      *registry.Registry
	ctx      context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.client = chainmocks.NewMockClient(s.ctrl)
	s.provider = chainmocks.NewMockProvider(s.ctrl)
	s.auditor = auditmocks.NewMockEmitter(s.ctrl)
	reg, err := registry.NewDefault()
	s.Require().NoError(err)
	s.reg = reg
	s.ctx = context.Background()
}

func (s *ServiceSuite) service(opts ...Option) *Service {
	opts = append([]Option{WithMetrics(metrics.New(prometheus.NewRegistry()))}, opts...)
	return NewService(s.reg, resolver.New(s.reg), opts...)
}

func (s *ServiceSuite) request(origin, dest string, assets, amounts []string, version int) Request {
	return Request{
		Origin:      origin,
		Destination: dest,
		Recipient:   alice,
		Assets:      assets,
		Amounts:     amounts,
		Options:     Options{Version: version},
	}
}

func localAsset(id uint64) xcm.Location {
	return xcm.NewLocation(0, xcm.PalletInstance(50), xcm.NewGeneralIndex(id))
}

func (s *ServiceSuite) requireCode(err error, code dErrors.Code) {
	s.Require().Error(err)
	s.Equal(code, dErrors.CodeOf(err), err.Error())
}

func (s *ServiceSuite) TestSystemToParaSortsLocalAssets() {
	svc := s.service()

	for _, assets := range [][]string{{"1", "2"}, {"2", "1"}} {
		d, err := svc.BuildTransferDirective(s.ctx, s.request("statemine", "2000", assets, []string{"100", "100"}, 2))
		s.Require().NoError(err)

		s.Equal(direction.SystemToPara, d.Direction)
		s.Equal(xcm.V2, d.Version)
		s.Equal(KindReserveTransfer, d.Kind)
		s.Equal(PalletPolkaXcm, d.Pallet)
		s.Equal(CallLimitedReserveTransfer, d.Call)
		s.True(d.Dest.Equal(xcm.NewLocation(1, xcm.Parachain(2000))))
		s.Require().Len(d.Assets, 2)
		s.True(d.Assets[0].ID.Equal(localAsset(1)), d.Assets[0].ID.String())
		s.True(d.Assets[1].ID.Equal(localAsset(2)), d.Assets[1].ID.String())
		s.Equal(uint32(0), d.FeeAssetItem)
		s.False(d.WeightLimit.Limited)
	}
}

func (s *ServiceSuite) TestRelayToParaNativeOnly() {
	svc := s.service()

	for v := 2; v <= 5; v++ {
		s.Run(fmt.Sprintf("V%d", v), func() {
			d, err := svc.BuildTransferDirective(s.ctx, s.request("kusama", "2000", nil, []string{"100"}, v))
			s.Require().NoError(err)
			s.Equal(direction.RelayToPara, d.Direction)
			s.Equal(PalletXcm, d.Pallet)
			s.True(d.Dest.Equal(xcm.NewLocation(0, xcm.Parachain(2000))))
			s.Require().Len(d.Assets, 1)
			s.True(d.Assets[0].ID.Equal(xcm.Here(0)))
			s.Equal("100", d.Assets[0].Amount.String())
		})
	}

	s.Run("version 1 is rejected", func() {
		_, err := svc.BuildTransferDirective(s.ctx, s.request("kusama", "2000", nil, []string{"100"}, 1))
		s.requireCode(err, dErrors.CodeInvalidXcmVersion)
	})

	s.Run("unpinned version uses the default", func() {
		d, err := s.service(WithDefaultVersion(xcm.V3)).
			BuildTransferDirective(s.ctx, s.request("kusama", "2000", nil, []string{"100"}, 0))
		s.Require().NoError(err)
		s.Equal(xcm.V3, d.Version)
	})
}

func (s *ServiceSuite) TestParaToRelayIsDisabled() {
	_, err := s.service().BuildTransferDirective(s.ctx, s.request("karura", "0", nil, []string{"100"}, 3))
	s.requireCode(err, dErrors.CodeUnsupportedDirection)

	s.Run("enabled by policy", func() {
		d, err := s.service(WithPolicy(direction.Policy{})).
			BuildTransferDirective(s.ctx, s.request("karura", "0", []string{"ksm"}, []string{"100"}, 3))
		s.Require().NoError(err)
		s.Equal(direction.ParaToRelay, d.Direction)
		s.True(d.Dest.Equal(xcm.Here(1)))
		s.True(d.Assets[0].ID.Equal(xcm.Here(1)))
	})
}

func (s *ServiceSuite) TestFeeAssetItem() {
	svc := s.service()

	req := s.request("statemine", "2000", []string{"ksm", "rmrk"}, []string{"100", "50"}, 3)
	req.Options.PayFeeWith = "rmrk"
	d, err := svc.BuildTransferDirective(s.ctx, req)
	s.Require().NoError(err)
	s.Require().Len(d.Assets, 2)
	// parents 0 sorts before parents 1
	s.True(d.Assets[0].ID.Equal(localAsset(8)))
	s.Equal(uint32(0), d.FeeAssetItem)

	req.Options.PayFeeWith = "KSM"
	d, err = svc.BuildTransferDirective(s.ctx, req)
	s.Require().NoError(err)
	s.Equal(uint32(1), d.FeeAssetItem)

	req.Options.PayFeeWith = "usdt"
	_, err = svc.BuildTransferDirective(s.ctx, req)
	s.requireCode(err, dErrors.CodeInvalidInput)
	s.Contains(err.Error(), `"usdt"`)
}

func (s *ServiceSuite) TestSystemToRelay() {
	s.Run("teleports the relay token", func() {
		d, err := s.service().BuildTransferDirective(s.ctx, s.request("statemine", "0", nil, []string{"100"}, 4))
		s.Require().NoError(err)
		s.Equal(direction.SystemToRelay, d.Direction)
		s.Equal(KindTeleport, d.Kind)
		s.Equal(CallLimitedTeleport, d.Call)
		s.True(d.Dest.Equal(xcm.Here(1)))
		s.True(d.Assets[0].ID.Equal(xcm.Here(1)))
	})

	s.Run("gated on the origin runtime", func() {
		s.provider.EXPECT().ClientFor("statemine").Return(s.client, true).Times(2)
		s.client.EXPECT().RuntimeVersion(gomock.Any()).Return(chain.RuntimeVersion{SpecName: "statemine", SpecVersion: 9420}, nil)
		s.client.EXPECT().RuntimeVersion(gomock.Any()).Return(chain.RuntimeVersion{SpecName: "statemine", SpecVersion: 9430}, nil)
		svc := s.service(WithChains(s.provider))

		_, err := svc.BuildTransferDirective(s.ctx, s.request("statemine", "0", nil, []string{"100"}, 4))
		s.requireCode(err, dErrors.CodeUnsupportedDirection)

		_, err = svc.BuildTransferDirective(s.ctx, s.request("statemine", "0", nil, []string{"100"}, 4))
		s.Require().NoError(err)
	})

	s.Run("runtime query failure is unavailable", func() {
		s.provider.EXPECT().ClientFor("statemine").Return(s.client, true)
		s.client.EXPECT().RuntimeVersion(gomock.Any()).Return(chain.RuntimeVersion{}, fmt.Errorf("dial: %w", sentinel.ErrUnavailable))

		_, err := s.service(WithChains(s.provider)).
			BuildTransferDirective(s.ctx, s.request("statemine", "0", nil, []string{"100"}, 4))
		s.requireCode(err, dErrors.CodeUnavailable)
	})
}

func (s *ServiceSuite) TestSystemToSystemKind() {
	svc := s.service()

	d, err := svc.BuildTransferDirective(s.ctx, s.request("statemine", "1002", []string{"ksm"}, []string{"100"}, 3))
	s.Require().NoError(err)
	s.Equal(direction.SystemToSystem, d.Direction)
	s.Equal(KindTeleport, d.Kind)

	d, err = svc.BuildTransferDirective(s.ctx, s.request("statemine", "1002", []string{"ksm", "rmrk"}, []string{"100", "1"}, 3))
	s.Require().NoError(err)
	s.Equal(KindReserveTransfer, d.Kind)
	s.Equal(CallLimitedReserveTransfer, d.Call)
}

func (s *ServiceSuite) TestParaToEthereum() {
	svc := s.service()
	weth, err := xcm.ParseLocation([]byte(wethJSON))
	s.Require().NoError(err)

	req := s.request("hydradx", ethereumDst, []string{"WETH"}, []string{"1000000000000000000"}, 4)
	req.Recipient = ethAccount
	d, err := svc.BuildTransferDirective(s.ctx, req)
	s.Require().NoError(err)
	s.Equal(direction.ParaToEthereum, d.Direction)
	s.Equal(CallTransferAssets, d.Call)
	s.Equal(uint8(2), d.Dest.Parents)
	s.True(d.Assets[0].ID.Equal(weth))
	first, ok := d.Beneficiary.First()
	s.Require().True(ok)
	s.Equal(xcm.KindAccountKey20, first.Kind())

	s.Run("substrate recipients are rejected", func() {
		bad := req
		bad.Recipient = alice
		_, err := svc.BuildTransferDirective(s.ctx, bad)
		s.requireCode(err, dErrors.CodeInvalidInput)
	})

	s.Run("requires xcm v3", func() {
		old := req
		old.Options.Version = 2
		_, err := svc.BuildTransferDirective(s.ctx, old)
		s.requireCode(err, dErrors.CodeInvalidXcmVersion)
	})

	s.Run("unregistered bridge asset", func() {
		other := req
		other.Assets = []string{"WBTC"}
		_, err := svc.BuildTransferDirective(s.ctx, other)
		s.requireCode(err, dErrors.CodeAssetNotFound)
	})
}

func (s *ServiceSuite) TestSystemToEthereumBeneficiary() {
	svc := s.service()
	req := s.request("statemint", ethereumDst, []string{wethJSON}, []string{"1000000000000000000"}, 4)
	req.Options.TransferForeignAssets = true

	s.Run("substrate recipients are rejected", func() {
		_, err := svc.BuildTransferDirective(s.ctx, req)
		s.requireCode(err, dErrors.CodeInvalidInput)
	})

	s.Run("ethereum recipients build", func() {
		ok := req
		ok.Recipient = ethAccount
		d, err := svc.BuildTransferDirective(s.ctx, ok)
		s.Require().NoError(err)
		s.Equal(direction.SystemToBridge, d.Direction)
		s.Equal(CallTransferAssets, d.Call)
		s.Equal(PalletPolkaXcm, d.Pallet)
		first, found := d.Beneficiary.First()
		s.Require().True(found)
		s.Equal(xcm.KindAccountKey20, first.Kind())
	})

	s.Run("relay origins are checked too", func() {
		_, err := svc.BuildTransferDirective(s.ctx, s.request("polkadot", ethereumDst, nil, []string{"100"}, 4))
		s.requireCode(err, dErrors.CodeInvalidInput)
	})
}

func (s *ServiceSuite) TestBridgeLegs() {
	svc := s.service()
	polkadotDst := `{"parents":2,"interior":{"X1":{"GlobalConsensus":"Polkadot"}}}`
	polkadot, err := xcm.ParseLocation([]byte(polkadotDst))
	s.Require().NoError(err)

	s.Run("system to bridge", func() {
		d, err := svc.BuildTransferDirective(s.ctx, s.request("statemine", polkadotDst, []string{"ksm"}, []string{"100"}, 3))
		s.Require().NoError(err)
		s.Equal(direction.SystemToBridge, d.Direction)
		s.Equal(KindReserveTransfer, d.Kind)
		s.Equal(PalletPolkaXcm, d.Pallet)
		s.Equal(CallTransferAssets, d.Call)
		s.True(d.Dest.Equal(polkadot), d.Dest.String())
		s.Require().Len(d.Assets, 1)
		s.True(d.Assets[0].ID.Equal(xcm.Here(1)))
		s.Equal(uint32(0), d.FeeAssetItem)
		first, ok := d.Beneficiary.First()
		s.Require().True(ok)
		s.Equal(xcm.KindAccountID32, first.Kind())
	})

	s.Run("relay to bridge", func() {
		d, err := svc.BuildTransferDirective(s.ctx, s.request("kusama", polkadotDst, nil, []string{"100"}, 4))
		s.Require().NoError(err)
		s.Equal(direction.RelayToBridge, d.Direction)
		s.Equal(KindReserveTransfer, d.Kind)
		s.Equal(PalletXcm, d.Pallet)
		s.Equal(CallTransferAssets, d.Call)
		s.True(d.Dest.Equal(polkadot), d.Dest.String())
		s.Require().Len(d.Assets, 1)
		s.True(d.Assets[0].ID.Equal(xcm.Here(0)))
	})

	s.Run("bridges need xcm v3", func() {
		_, err := svc.BuildTransferDirective(s.ctx, s.request("kusama", polkadotDst, nil, []string{"100"}, 2))
		s.requireCode(err, dErrors.CodeInvalidXcmVersion)
	})
}

func (s *ServiceSuite) TestRelayToSystem() {
	d, err := s.service().BuildTransferDirective(s.ctx, s.request("kusama", "1000", nil, []string{"100"}, 3))
	s.Require().NoError(err)
	s.Equal(direction.RelayToSystem, d.Direction)
	s.Equal(KindTeleport, d.Kind)
	s.Equal(PalletXcm, d.Pallet)
	s.Equal(CallLimitedTeleport, d.Call)
	s.True(d.Dest.Equal(xcm.NewLocation(0, xcm.Parachain(1000))), d.Dest.String())
	s.Require().Len(d.Assets, 1)
	s.True(d.Assets[0].ID.Equal(xcm.Here(0)))
	s.Equal(uint32(0), d.FeeAssetItem)
	first, ok := d.Beneficiary.First()
	s.Require().True(ok)
	s.Equal(xcm.KindAccountID32, first.Kind())
}

func (s *ServiceSuite) TestParaOrigins() {
	svc := s.service()
	rmrk := xcm.NewLocation(1, xcm.Parachain(1000), xcm.PalletInstance(50), xcm.NewGeneralIndex(8))

	s.Run("para to system", func() {
		d, err := svc.BuildTransferDirective(s.ctx, s.request("karura", "1000", []string{"rmrk"}, []string{"100"}, 3))
		s.Require().NoError(err)
		s.Equal(direction.ParaToSystem, d.Direction)
		s.Equal(KindReserveTransfer, d.Kind)
		s.Equal(PalletPolkaXcm, d.Pallet)
		s.Equal(CallLimitedReserveTransfer, d.Call)
		s.True(d.Dest.Equal(xcm.NewLocation(1, xcm.Parachain(1000))), d.Dest.String())
		s.Require().Len(d.Assets, 1)
		s.True(d.Assets[0].ID.Equal(rmrk), d.Assets[0].ID.String())
	})

	s.Run("para to para", func() {
		d, err := svc.BuildTransferDirective(s.ctx, s.request("karura", "2001", []string{"rmrk", "KAR"}, []string{"5", "100"}, 3))
		s.Require().NoError(err)
		s.Equal(direction.ParaToPara, d.Direction)
		s.Equal(KindReserveTransfer, d.Kind)
		s.Equal(CallLimitedReserveTransfer, d.Call)
		s.True(d.Dest.Equal(xcm.NewLocation(1, xcm.Parachain(2001))), d.Dest.String())
		s.Require().Len(d.Assets, 2)
		// parents 0 sorts before parents 1
		s.True(d.Assets[0].ID.Equal(xcm.Here(0)))
		s.Equal("100", d.Assets[0].Amount.String())
		s.True(d.Assets[1].ID.Equal(rmrk))
	})

	s.Run("fee asset index follows the sorted order", func() {
		req := s.request("karura", "2001", []string{"rmrk", "KAR"}, []string{"5", "100"}, 3)
		req.Options.PayFeeWith = "rmrk"
		d, err := svc.BuildTransferDirective(s.ctx, req)
		s.Require().NoError(err)
		s.Equal(uint32(1), d.FeeAssetItem)
	})
}

func (s *ServiceSuite) TestForeignAssetCheckedOnChain() {
	hydradx := `{"parents":1,"interior":{"X1":{"Parachain":2034}}}`
	loc, err := xcm.ParseLocation([]byte(hydradx))
	s.Require().NoError(err)

	known, err := s.reg.HasForeignAsset(s.ctx, "statemint", loc)
	s.Require().NoError(err)
	s.Require().False(known)

	s.provider.EXPECT().ClientFor("statemint").Return(s.client, true)
	s.client.EXPECT().ForeignAssetExists(gomock.Any(), loc).Return(true, nil)
	svc := NewService(s.reg, resolver.New(s.reg, resolver.WithChains(s.provider)),
		WithMetrics(metrics.New(prometheus.NewRegistry())))

	req := s.request("statemint", "2034", []string{hydradx}, []string{"100"}, 3)
	req.Options.TransferForeignAssets = true
	d, err := svc.BuildTransferDirective(s.ctx, req)
	s.Require().NoError(err)
	s.Equal(direction.SystemToPara, d.Direction)
	s.True(d.Dest.Equal(xcm.NewLocation(1, xcm.Parachain(2034))))
	s.Require().Len(d.Assets, 1)
	s.True(d.Assets[0].ID.Equal(loc))

	known, err = s.reg.HasForeignAsset(s.ctx, "statemint", loc)
	s.Require().NoError(err)
	s.True(known)

	// the cached location no longer reaches the chain
	_, err = svc.BuildTransferDirective(s.ctx, req)
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestInputErrors() {
	svc := s.service()
	cases := []struct {
		name string
		req  Request
		code dErrors.Code
	}{
		{"unknown origin", s.request("nowhere", "2000", nil, []string{"1"}, 3), dErrors.CodeInvalidInput},
		{"amount count mismatch", s.request("statemine", "2000", []string{"1", "2"}, []string{"1"}, 3), dErrors.CodeInvalidInput},
		{"native takes one amount", s.request("statemine", "2000", nil, []string{"1", "2"}, 3), dErrors.CodeInvalidInput},
		{"no amounts", s.request("statemine", "2000", nil, nil, 3), dErrors.CodeInvalidInput},
		{"zero amount", s.request("statemine", "2000", []string{"rmrk"}, []string{"0"}, 3), dErrors.CodeInvalidInput},
		{"negative amount", s.request("statemine", "2000", []string{"rmrk"}, []string{"-1"}, 3), dErrors.CodeInvalidInput},
		{"unknown symbol", s.request("statemine", "2000", []string{"nope"}, []string{"1"}, 3), dErrors.CodeAssetNotFound},
		{"relay to itself", s.request("kusama", "0", nil, []string{"1"}, 3), dErrors.CodeUnsupportedDirection},
		{"bad location", s.request("statemine", "2000", []string{`{"parents":`}, []string{"1"}, 3), dErrors.CodeInvalidLocation},
		{"missing recipient", Request{Origin: "kusama", Destination: "2000", Amounts: []string{"1"}}, dErrors.CodeInvalidInput},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			d, err := svc.BuildTransferDirective(s.ctx, tc.req)
			s.Nil(d)
			s.requireCode(err, tc.code)
		})
	}
}

func (s *ServiceSuite) TestWeightLimit() {
	svc := s.service()
	req := s.request("kusama", "2000", nil, []string{"100"}, 3)
	req.Options.IsLimited = true
	req.Options.WeightLimit = &Weight{RefTime: "1000", ProofSize: "2000"}

	d, err := svc.BuildTransferDirective(s.ctx, req)
	s.Require().NoError(err)
	s.Equal(xcm.Limited(1000, 2000), d.WeightLimit)

	req.Options.WeightLimit = &Weight{RefTime: "x", ProofSize: "1"}
	_, err = svc.BuildTransferDirective(s.ctx, req)
	s.requireCode(err, dErrors.CodeInvalidInput)
}

func (s *ServiceSuite) TestAuditEvents() {
	var events []audit.Event
	s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e audit.Event) error {
		events = append(events, e)
		return nil
	}).Times(2)
	svc := s.service(WithAuditor(s.auditor))

	_, err := svc.BuildTransferDirective(s.ctx, s.request("kusama", "2000", nil, []string{"100"}, 3))
	s.Require().NoError(err)
	_, err = svc.BuildTransferDirective(s.ctx, s.request("karura", "0", nil, []string{"100"}, 3))
	s.Require().Error(err)

	s.Require().Len(events, 2)
	s.Equal(string(audit.EventDirectiveBuilt), events[0].Action)
	s.Equal("RelayToPara", events[0].Direction)
	s.Len(events[0].Fingerprint, 64)
	s.Equal(string(audit.EventDirectiveFailed), events[1].Action)
	s.Equal(string(dErrors.CodeUnsupportedDirection), events[1].Reason)
}

func (s *ServiceSuite) TestAuditFailureDoesNotFailBuild() {
	s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("sink down"))
	_, err := s.service(WithAuditor(s.auditor)).
		BuildTransferDirective(s.ctx, s.request("kusama", "2000", nil, []string{"100"}, 3))
	s.NoError(err)
}

func (s *ServiceSuite) TestEncode() {
	enc, err := s.service().Encode(s.ctx, s.request("kusama", "2000", nil, []string{"100"}, 3))
	s.Require().NoError(err)
	s.Equal(direction.RelayToPara, enc.Directive.Direction)
	s.True(strings.HasPrefix(hex.EncodeToString(enc.CallArgs), "03000100411f"), hex.EncodeToString(enc.CallArgs))
}

func (s *ServiceSuite) TestRender() {
	d, err := s.service().BuildTransferDirective(s.ctx, s.request("statemine", "2000", []string{"rmrk"}, []string{"5"}, 3))
	s.Require().NoError(err)

	r, err := d.Render()
	s.Require().NoError(err)
	s.JSONEq(`{"V3":{"parents":1,"interior":{"X1":{"Parachain":2000}}}}`, string(r.Dest))
	s.JSONEq(`{"V3":[{"id":{"Concrete":{"parents":0,"interior":{"X2":[{"PalletInstance":50},{"GeneralIndex":"8"}]}}},"fun":{"Fungible":"5"}}]}`, string(r.Assets))
	s.JSONEq(`"Unlimited"`, string(r.WeightLimit))
	s.Equal("SystemToPara", r.Direction)
	s.Equal(3, r.XcmVersion)

	s.Run("object amounts", func() {
		req := s.request("kusama", "2000", nil, []string{"100"}, 3)
		req.Options.AmountKind = xcm.AmountObj
		d, err := s.service().BuildTransferDirective(s.ctx, req)
		s.Require().NoError(err)
		r, err := d.Render()
		s.Require().NoError(err)
		s.JSONEq(`{"V3":[{"id":{"Concrete":{"parents":0,"interior":"Here"}},"fun":{"Fungible":{"Fungible":"100"}}}]}`, string(r.Assets))
		s.JSONEq(`{"V3":{"parents":0,"interior":{"X1":{"Parachain":2000}}}}`, string(r.Dest))
	})
}

func (s *ServiceSuite) TestClassify() {
	svc := s.service()

	c, err := svc.Classify(s.ctx, "statemine", "2000")
	s.Require().NoError(err)
	s.Equal(direction.SystemToPara, c.Direction)
	s.True(c.Enabled)

	c, err = svc.Classify(s.ctx, "karura", "0")
	s.Require().NoError(err)
	s.Equal(direction.ParaToRelay, c.Direction)
	s.False(c.Enabled)
	s.NotEmpty(c.Reason)

	_, err = svc.Classify(s.ctx, "kusama", "0")
	s.requireCode(err, dErrors.CodeUnsupportedDirection)
}
