/*
 * Copyright 2025 The Tether Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package syncer

import (
	"context"
	goerrors "errors"

	"github.com/tether-app/tether/agent/backend/localdb"
	"github.com/tether-app/tether/agent/backend/remote"
	"github.com/tether-app/tether/agent/logging"
	"github.com/tether-app/tether/agent/resolve"
	"github.com/tether-app/tether/api/types"
)

// upload pushes the pending local documents of the collection to the
// remote store. A pending document whose remote counterpart diverged
// is recorded as a conflict and left out of the batch so it is not
// clobbered.
func (s *Syncer) upload(
	ctx context.Context,
	userID string,
	collection types.Collection,
	result *types.SyncResult,
) ([]*types.ConflictInfo, error) {
	pending, err := s.local.FindPendingByUser(ctx, collection, userID)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return nil, nil
	}

	var conflicts []*types.ConflictInfo
	var toUpload []types.Entity
	for _, entity := range pending {
		remoteDoc, err := s.remote.FindDocument(ctx, userID, collection, entity.EntityID())
		if err != nil {
			if goerrors.Is(err, remote.ErrDocumentNotFound) {
				toUpload = append(toUpload, entity)
				continue
			}
			return nil, err
		}

		if resolve.HasConflict(entity, remoteDoc, s.tolerance) {
			conflicts = append(conflicts, types.NewConflictInfo(
				types.ConflictUpload,
				entity,
				remoteDoc,
				s.now(),
			))
			continue
		}

		toUpload = append(toUpload, entity)
	}

	if len(toUpload) > 0 {
		now := s.now()
		for _, entity := range toUpload {
			entity.Touch(now)
			entity.SetStatus(types.StatusSynced)
		}

		if err := s.remote.BatchWrite(ctx, userID, collection, toUpload); err != nil {
			return nil, err
		}

		for _, entity := range toUpload {
			if err := s.local.UpdateEntity(ctx, entity); err != nil {
				return nil, err
			}
		}
		result.Operations.Uploaded += len(toUpload)
	}

	logging.From(ctx).Debugf(
		"uploaded %d of %s, %d conflicts",
		len(toUpload), collection, len(conflicts),
	)

	return conflicts, nil
}

// download pulls the remote documents of the collection modified since
// the watermark, creating or overwriting local copies. A remote change
// colliding with a pending local edit is recorded as a conflict and the
// local edit is kept.
func (s *Syncer) download(
	ctx context.Context,
	userID string,
	collection types.Collection,
	result *types.SyncResult,
	conflicted map[string]bool,
) ([]*types.ConflictInfo, error) {
	watermark, err := s.local.Watermark(ctx, collection)
	if err != nil {
		return nil, err
	}

	// Capture the pass time before querying so documents written while
	// the query runs are picked up again next pass.
	passStart := s.now()

	changed, err := s.remote.FindChangedSince(ctx, userID, collection, watermark)
	if err != nil {
		return nil, err
	}

	var conflicts []*types.ConflictInfo
	for _, remoteDoc := range changed {
		if conflicted[remoteDoc.EntityID()] {
			continue
		}

		localDoc, err := s.local.FindEntity(ctx, collection, remoteDoc.EntityID())
		if err != nil {
			if goerrors.Is(err, localdb.ErrEntityNotFound) {
				copied := remoteDoc.DeepCopy()
				copied.SetStatus(types.StatusSynced)
				if err := s.local.CreateEntity(ctx, copied); err != nil {
					return nil, err
				}
				result.Operations.Downloaded++
				continue
			}
			return nil, err
		}

		if resolve.HasConflict(localDoc, remoteDoc, s.tolerance) {
			conflicts = append(conflicts, types.NewConflictInfo(
				types.ConflictDownload,
				localDoc,
				remoteDoc,
				s.now(),
			))
			continue
		}

		copied := remoteDoc.DeepCopy()
		copied.SetStatus(types.StatusSynced)
		if err := s.local.UpdateEntity(ctx, copied); err != nil {
			return nil, err
		}
		result.Operations.Downloaded++
	}

	if err := s.local.SetWatermark(ctx, collection, passStart); err != nil {
		return nil, err
	}

	logging.From(ctx).Debugf(
		"downloaded %d of %s, %d conflicts",
		result.Operations.Downloaded, collection, len(conflicts),
	)

	return conflicts, nil
}

// settle applies the resolution mode to the conflicts of one pass. In
// auto mode each conflict is merged by the collection policy and the
// merged document is written to both stores; in manual mode the
// conflicts stay pending.
func (s *Syncer) settle(
	ctx context.Context,
	userID string,
	collection types.Collection,
	mode types.ConflictResolutionMode,
	conflicts []*types.ConflictInfo,
) error {
	if mode == types.ResolutionManual {
		return nil
	}

	for _, info := range conflicts {
		if err := s.ResolveConflict(ctx, userID, info); err != nil {
			return err
		}
		logging.From(ctx).Infof(
			"resolved %s conflict on %s/%s",
			info.Type, collection, info.DocumentID,
		)
	}

	return nil
}

// writeMerged stamps the merged document and writes it to both stores.
func (s *Syncer) writeMerged(
	ctx context.Context,
	userID string,
	collection types.Collection,
	merged types.Entity,
) error {
	merged.Touch(s.now())
	merged.SetStatus(types.StatusSynced)

	if err := s.remote.BatchWrite(ctx, userID, collection, []types.Entity{merged}); err != nil {
		return err
	}

	if err := s.local.UpdateEntity(ctx, merged); err != nil {
		if goerrors.Is(err, localdb.ErrEntityNotFound) {
			return s.local.CreateEntity(ctx, merged)
		}
		return err
	}

	return nil
}
