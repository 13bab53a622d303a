package sqlinline

const QCreateDownloadsTable = `--sql 3c0f5b8e-6a41-4d2e-9b7c-0e8f1a2d4c61
create table if not exists asset_downloads (
  id bigserial primary key,
  asset_id text not null,
  asset_type text not null,
  filename text not null default '',
  source_url text not null default '',
  success boolean not null,
  error text not null default '',
  request_id text not null default '',
  created_at timestamptz not null default now()
);
`

const QInsertDownload = `--sql 9a7d2e14-58c3-4f0b-a6e1-2b4c8d9f0e37
insert into asset_downloads(
  asset_id,
  asset_type,
  filename,
  source_url,
  success,
  error,
  request_id,
  created_at
) values (
  $1::text,
  $2::text,
  $3::text,
  $4::text,
  $5::boolean,
  $6::text,
  $7::text,
  now()
) returning id;
`

const QListRecentDownloads = `--sql e5b1c7a3-0d92-4e68-8f14-7c3a9b2d6e05
select
  id,
  asset_id,
  asset_type,
  filename,
  source_url,
  success,
  error,
  request_id,
  created_at
from asset_downloads
order by created_at desc, id desc
limit $1::int;
`
