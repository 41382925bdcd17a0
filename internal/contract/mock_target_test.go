package contract

import (
	"testing"

	"go.uber.org/mock/gomock"
)

func TestEstimatorUsesMockedTargetProfile(t *testing.T) {
	ctrl := gomock.NewController(t)
	profile := NewMockTargetProfile(ctrl)

	profile.EXPECT().OpCost(OpAllocateStack).Return(uint64(0)).AnyTimes()
	profile.EXPECT().OpCost(OpArithmetic).Return(uint64(7)).AnyTimes()
	profile.EXPECT().OpCost(OpMul).Return(uint64(1)).AnyTimes()
	profile.EXPECT().OpCost(OpDivMod).Return(uint64(1)).AnyTimes()
	profile.EXPECT().OpCost(OpLoadStoreHit).Return(uint64(1)).AnyTimes()
	profile.EXPECT().OpCost(OpCallBase).Return(uint64(1)).AnyTimes()
	profile.EXPECT().OpCost(OpBranch).Return(uint64(1)).AnyTimes()
	profile.EXPECT().OpCost(OpAllocateLinear).Return(uint64(1)).AnyTimes()
	profile.EXPECT().OpCost(OpAllocateRegion).Return(uint64(1)).AnyTimes()
	profile.EXPECT().OpCost(OpAllocateManual).Return(uint64(1)).AnyTimes()
	profile.EXPECT().OpCost(OpAllocateSmartPtr).Return(uint64(1)).AnyTimes()
	profile.EXPECT().OpCost(OpArcRefcount).Return(uint64(1)).AnyTimes()
	profile.EXPECT().OpCost(OpBoundsCheck).Return(uint64(1)).AnyTimes()
	profile.EXPECT().OpCost(OpMoveNonCopy).Return(uint64(1)).AnyTimes()

	est := NewEstimator(profile, nil)
	fn := singleAddBlockFunction()

	cost, err := est.Estimate(fn)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if cost.Cycles != 7 {
		t.Fatalf("Cycles = %d, want 7 (the mocked arithmetic op cost)", cost.Cycles)
	}
}
