package catalog

// Both queries return: schema, view, level, kind ('v' or 'm'), definition,
// index name, index definition. Views without indexes produce one row with
// NULL index columns; views with several indexes produce one row per index.

const allViewsQuery = `
SELECT v.schema_name, v.view, v.level, v.relkind, v.definition,
       i.indexname AS index_name, i.indexdef AS index_def
FROM (
    SELECT matviewname AS view,
           schemaname AS schema_name,
           1 AS level,
           'm' AS relkind,
           CONCAT('CREATE MATERIALIZED VIEW ', quote_ident(schemaname), '.', quote_ident(matviewname), ' AS', E'\n', definition) AS definition
    FROM pg_matviews
    WHERE schemaname NOT IN ('information_schema', 'pg_catalog')
    UNION
    SELECT viewname AS view,
           schemaname AS schema_name,
           1 AS level,
           'v' AS relkind,
           CONCAT('CREATE VIEW ', quote_ident(schemaname), '.', quote_ident(viewname), ' AS', E'\n', definition) AS definition
    FROM pg_views
    WHERE schemaname NOT IN ('information_schema', 'pg_catalog')
) v
LEFT JOIN pg_indexes i ON v.view = i.tablename AND v.schema_name = i.schemaname
ORDER BY v.schema_name, v.view, i.indexname
`

// dependentsQuery walks pg_depend/pg_rewrite from $1 outwards. level is the
// longest dependency path from the referenced object.
const dependentsQuery = `
WITH RECURSIVE views AS (
    SELECT DISTINCT
        v.oid::regclass AS view_class,
        v.relname AS view,
        n.nspname AS schema_name,
        v.relkind,
        1 AS level
    FROM pg_depend AS d
    JOIN pg_rewrite AS r ON r.oid = d.objid
    JOIN pg_class AS v ON v.oid = r.ev_class
    JOIN pg_namespace n ON n.oid = v.relnamespace
    WHERE v.relkind IN ('v', 'm')
      AND d.classid = 'pg_rewrite'::regclass
      AND d.refclassid = 'pg_class'::regclass
      AND d.deptype = 'n'
      AND d.refobjid = $1::text::regclass
    UNION
    SELECT
        v.oid::regclass,
        v.relname,
        n.nspname,
        v.relkind,
        views.level + 1
    FROM views
    JOIN pg_depend AS d ON d.refobjid = views.view_class
    JOIN pg_rewrite AS r ON r.oid = d.objid
    JOIN pg_class AS v ON v.oid = r.ev_class
    JOIN pg_namespace n ON n.oid = v.relnamespace
    WHERE v.relkind IN ('v', 'm')
      AND d.classid = 'pg_rewrite'::regclass
      AND d.refclassid = 'pg_class'::regclass
      AND d.deptype = 'n'
      AND v.oid <> views.view_class
)
SELECT t.schema_name, t.view, t.level, t.relkind, t.definition,
       i.indexname AS index_name, i.indexdef AS index_def
FROM (
    SELECT
        view_class,
        view,
        schema_name,
        max(level)::integer AS level,
        relkind::text AS relkind,
        CONCAT(
            CASE WHEN relkind = 'm' THEN 'CREATE MATERIALIZED VIEW ' ELSE 'CREATE VIEW ' END,
            quote_ident(schema_name), '.', quote_ident(view), ' AS', E'\n',
            pg_get_viewdef(view_class)
        ) AS definition
    FROM views
    GROUP BY view_class, view, schema_name, relkind
) t
LEFT JOIN pg_indexes i ON t.view = i.tablename AND t.schema_name = i.schemaname
ORDER BY t.level, t.schema_name, t.view, i.indexname
`
