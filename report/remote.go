// Copyright 2024 The netsim Authors
// This file is part of netsim.
//
// netsim is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// netsim is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with netsim. If not, see <http://www.gnu.org/licenses/>.

package report

import (
	"bytes"
	"context"
	"fmt"
	"net/url"

	"github.com/Azure/azure-storage-blob-go/azblob"

	"github.com/aka2910/netsim/probe"
)

// Remote uploads the same artifacts LocalFiles writes to disk into an
// Azure Blob Storage container instead (or in addition, when both sinks
// are registered with the driver) — the out-of-process durable store a
// multi-machine run would want instead of a local directory.
type Remote struct {
	ContainerURL azblob.ContainerURL
}

// NewRemote builds a Remote sink from a container SAS URL and an account
// shared-key credential.
func NewRemote(containerURL, accountName, accountKey string) (*Remote, error) {
	cred, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("report: building Azure credential: %w", err)
	}
	pipeline := azblob.NewPipeline(cred, azblob.PipelineOptions{})
	u, err := url.Parse(containerURL)
	if err != nil {
		return nil, fmt.Errorf("report: parsing container URL: %w", err)
	}
	return &Remote{ContainerURL: azblob.NewContainerURL(*u, pipeline)}, nil
}

// Dump implements driver.Sink by uploading one block blob per peer dot
// graph plus the summary table.
func (r *Remote) Dump(peers []*probe.Peer) error {
	ctx := context.Background()
	for _, p := range peers {
		blob := r.ContainerURL.NewBlockBlobURL(fmt.Sprintf("%d.dot", p.ID))
		body := bytes.NewReader([]byte(DotGraph(p)))
		if _, err := blob.Upload(ctx, body, azblob.BlobHTTPHeaders{}, azblob.Metadata{}, azblob.BlobAccessConditions{}); err != nil {
			return fmt.Errorf("report: uploading peer %d dot graph: %w", p.ID, err)
		}
	}
	var buf bytes.Buffer
	WriteSummary(&buf, peers)
	summaryBlob := r.ContainerURL.NewBlockBlobURL("summary.txt")
	if _, err := summaryBlob.Upload(ctx, bytes.NewReader(buf.Bytes()), azblob.BlobHTTPHeaders{}, azblob.Metadata{}, azblob.BlobAccessConditions{}); err != nil {
		return fmt.Errorf("report: uploading summary: %w", err)
	}
	return nil
}
