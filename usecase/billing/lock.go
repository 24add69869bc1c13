package billing

import (
	"context"

	"github.com/labstack/gommon/log"

	"github.com/radhian/billing-reconciliation/consts"
	"github.com/radhian/billing-reconciliation/infra/locker"
)

// obtainSnapshotLock waits at most lockWait for the snapshot write lock.
func (u *billingUsecase) obtainSnapshotLock(ctx context.Context, runID string) (locker.Lock, error) {
	waitCtx, cancel := context.WithTimeout(ctx, u.lockWait)
	defer cancel()

	lock, err := u.locker.Obtain(waitCtx, consts.SnapshotLockKey, u.lockTTL)
	if err != nil {
		return nil, err
	}
	log.Infof("[LOCK_PROCESS] run_id:%s", runID)
	return lock, nil
}

func (u *billingUsecase) releaseSnapshotLock(lock locker.Lock, runID string) {
	if err := lock.Release(context.Background()); err != nil {
		log.Errorf("[Lock] Failed to release snapshot lock for run %s: %v", runID, err)
		return
	}
	log.Infof("[UNLOCK_PROCESS] run_id:%s", runID)
}
