package handler

import (
	"flowpulse/internal/gitstore"
	"flowpulse/internal/svc"
	"flowpulse/internal/types"
	"flowpulse/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// GitHistory returns the commit history for one workflow's definition.
func GitHistory(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	history, err := svc.Ctx.Git.History(c.Params("workflowId"), limit)
	if err != nil {
		return fail(c, err)
	}
	return response.OK(c, history)
}

// GitBranches lists branches and the current branch.
func GitBranches(c *fiber.Ctx) error {
	branches, err := svc.Ctx.Git.ListBranches()
	if err != nil {
		return fail(c, err)
	}
	current, err := svc.Ctx.Git.CurrentBranch()
	if err != nil {
		return fail(c, err)
	}
	return response.OK(c, types.BranchesInfo{Current: current, Branches: branches})
}

// GitCreateBranch creates or checks out a branch.
func GitCreateBranch(c *fiber.Ctx) error {
	var req types.CreateBranchRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if req.Name == "" {
		return response.BadRequest(c, "name is required")
	}

	if err := svc.Ctx.Git.CreateOrCheckoutBranch(req.Name); err != nil {
		return fail(c, err)
	}
	branches, err := svc.Ctx.Git.ListBranches()
	if err != nil {
		return fail(c, err)
	}
	return response.OK(c, types.BranchesInfo{Current: req.Name, Branches: branches})
}

// GitDeleteBranch removes a branch. force=true skips the merge check.
func GitDeleteBranch(c *fiber.Ctx) error {
	if err := svc.Ctx.Git.DeleteBranch(c.Params("name"), c.QueryBool("force")); err != nil {
		return fail(c, err)
	}
	return response.NoContent(c)
}

// GitTags lists tags.
func GitTags(c *fiber.Ctx) error {
	tags, err := svc.Ctx.Git.ListTags()
	if err != nil {
		return fail(c, err)
	}
	return response.OK(c, tags)
}

// GitCreateTag tags a commit.
func GitCreateTag(c *fiber.Ctx) error {
	var req types.CreateTagRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if req.Name == "" {
		return response.BadRequest(c, "name is required")
	}

	if err := svc.Ctx.Git.CreateTag(req.Name, req.Message, req.Commit); err != nil {
		return fail(c, err)
	}
	return response.Created(c, fiber.Map{"name": req.Name})
}

// GitDiff returns the textual diff of one workflow between two revisions.
func GitDiff(c *fiber.Ctx) error {
	commitA := c.Query("commitA")
	if commitA == "" {
		return response.BadRequest(c, "commitA is required")
	}
	commitB := c.Query("commitB", "HEAD")

	diff, err := svc.Ctx.Git.Diff(c.Params("workflowId"), commitA, commitB)
	if err != nil {
		return fail(c, err)
	}
	return response.OK(c, types.DiffInfo{
		WorkflowID: c.Params("workflowId"),
		CommitA:    commitA,
		CommitB:    commitB,
		Diff:       diff,
	})
}

// GitContent returns a workflow definition as of one commit.
func GitContent(c *fiber.Ctx) error {
	content, err := svc.Ctx.Git.GetWorkflowAtCommit(c.Params("workflowId"), c.Params("commit"))
	if err != nil {
		return fail(c, err)
	}
	return response.OK(c, fiber.Map{
		"workflowId": c.Params("workflowId"),
		"commit":     c.Params("commit"),
		"definition": content,
	})
}

// GitCommit commits a definition without recording a version row.
func GitCommit(c *fiber.Ctx) error {
	var req types.CommitWorkflowRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if req.WorkflowID == "" || req.Definition == nil {
		return response.BadRequest(c, "workflowId and definition are required")
	}

	result, err := svc.Ctx.Git.Commit(req.WorkflowID, types.JSONString(req.Definition), gitstore.CommitOptions{
		Message: req.Message,
		Author:  req.Author,
		Email:   req.Email,
		Branch:  req.Branch,
	})
	if err != nil {
		return fail(c, err)
	}
	return response.Created(c, result)
}

// GitMerge fast-forwards target to source.
func GitMerge(c *fiber.Ctx) error {
	var req types.MergeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if req.Source == "" {
		return response.BadRequest(c, "source is required")
	}

	if err := svc.Ctx.Git.Merge(req.Source, req.Target); err != nil {
		return fail(c, err)
	}
	return response.OK(c, fiber.Map{"source": req.Source, "target": req.Target})
}

// GitRollback restores a definition to an earlier commit and records the
// result as an activated hotfix version.
func GitRollback(c *fiber.Ctx) error {
	var req types.RollbackRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if req.WorkflowID == "" || req.Hash == "" {
		return response.BadRequest(c, "workflowId and hash are required")
	}

	version, err := svc.Ctx.Versions.Rollback(&req)
	if err != nil {
		return fail(c, err)
	}
	return response.OK(c, version)
}
